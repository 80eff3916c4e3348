package xid

import "errors"

// =============================================================================
// 错误定义
// =============================================================================

var (
	// ErrNotInitialized 全局生成器未初始化。
	// 仅在显式调用 Init 失败之后出现：此时自动初始化被禁用（不覆盖用户意图），
	// 包级函数返回此错误，修复配置后可再次调用 Init。
	ErrNotInitialized = errors.New("xid: generator not initialized (Init failed; fix the config and call Init again)")

	// ErrAlreadyInitialized 全局生成器已初始化。
	// Init 只能成功一次；如需多个独立生成器请使用 NewGenerator。
	ErrAlreadyInitialized = errors.New("xid: generator already initialized")

	// ErrClockBackwardTimeout 时钟回拨等待超时。
	// NewWithRetry 在 maxClockDrift 窗口内反复重试仍未恢复时返回。
	ErrClockBackwardTimeout = errors.New("xid: clock backward wait timeout")

	// ErrOverTimeLimit 时间分量溢出（39 位耗尽），不可恢复，重试无意义。
	ErrOverTimeLimit = errors.New("xid: time component overflow")

	// ErrInvalidID ID 值无效。Parse 对语法错误、溢出、非正值统一返回此错误。
	ErrInvalidID = errors.New("xid: invalid id")

	// ErrInvalidConfig 配置无效。NewGenerator 对负的等待/重试参数、
	// 以及 sonyflake 初始化失败（起始时间超前、机器 ID 校验不通过等）返回此错误。
	ErrInvalidConfig = errors.New("xid: invalid config")

	// ErrNilGenerator 零值 Generator 或 nil *Generator。
	// 生成器必须通过 NewGenerator 创建。
	ErrNilGenerator = errors.New("xid: nil generator (use NewGenerator)")

	// ErrNilContext ctx 参数为 nil。非 Must API 不 panic，由调用方处理。
	ErrNilContext = errors.New("xid: nil context")

	// ErrNoPrivateAddress 机器 ID 的全部获取策略失败且主机没有私有 IPv4 地址。
	ErrNoPrivateAddress = errors.New("xid: no private IP address found")
)
