package xid

import "time"

// options 内部配置。
type options struct {
	machineID        func() (uint16, error)
	checkMachineID   func(uint16) bool
	startTime        time.Time
	maxClockDrift    time.Duration
	maxClockDriftSet bool // 区分"未传入"与"显式传入 0"
	retryInterval    time.Duration
	retryIntervalSet bool
}

// Option 配置 Generator。nil Option 被静默跳过，便于条件式构建选项列表。
type Option func(*options)

// WithMachineID 设置机器 ID 获取函数，返回值须在 0-65535 范围内。
// 默认使用 [DefaultMachineID] 的回退链（环境变量 → 主机名哈希 → 私有 IP）。
func WithMachineID(fn func() (uint16, error)) Option {
	return func(c *options) {
		c.machineID = fn
	}
}

// WithCheckMachineID 设置机器 ID 校验函数，创建生成器时调用；
// 返回 false 会使 NewGenerator/Init 失败。典型用途是检查 ID 唯一性或范围。
func WithCheckMachineID(fn func(uint16) bool) Option {
	return func(c *options) {
		c.checkMachineID = fn
	}
}

// WithStartTime 设置 ID 时间分量的纪元。
//
// 默认使用 sonyflake 的内置纪元。39 位时间分量以 10ms 为单位，
// 约可用 174 年；把纪元设到服务上线时间可以最大化可用年限。
// 纪元超前于当前时间会使 NewGenerator 返回 [ErrInvalidConfig]。
// 同一业务域内纪元必须一致，否则 ID 失去可排序性。
func WithStartTime(t time.Time) Option {
	return func(c *options) {
		c.startTime = t
	}
}

// WithMaxClockDrift 设置时钟回拨时的最大等待时长。
//
// 默认 500ms，适合常规 NTP 校正幅度。零值表示不等待（首次失败即返回超时），
// 负值在 NewGenerator 中 fail-fast。
func WithMaxClockDrift(d time.Duration) Option {
	return func(c *options) {
		c.maxClockDrift = d
		c.maxClockDriftSet = true
	}
}

// WithRetryInterval 设置时钟回拨等待期间的重试间隔。
//
// 默认 10ms（与 sonyflake 的时间精度一致）。零值表示无间隔连续重试，
// 负值在 NewGenerator 中 fail-fast。
func WithRetryInterval(d time.Duration) Option {
	return func(c *options) {
		c.retryInterval = d
		c.retryIntervalSet = true
	}
}
