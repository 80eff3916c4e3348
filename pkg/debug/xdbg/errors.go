package xdbg

import "errors"

var (
	// ErrNotRunning 服务未在运行（未 Start 或已 Stop）。
	ErrNotRunning = errors.New("xdbg: server not running")

	// ErrAlreadyRunning 服务已在运行，重复 Start 被拒绝。
	ErrAlreadyRunning = errors.New("xdbg: server already running")

	// ErrStopped 服务已停止。Stopped 是终态，不能再 Start。
	ErrStopped = errors.New("xdbg: server stopped")

	// ErrCommandNotFound 请求了未注册的命令。
	ErrCommandNotFound = errors.New("xdbg: command not found")

	// ErrCommandTimeout 命令执行超过超时预算。
	ErrCommandTimeout = errors.New("xdbg: command timeout")

	// ErrTooManySessions 并发会话数达到上限，新连接被拒绝。
	ErrTooManySessions = errors.New("xdbg: too many sessions")

	// ErrInvalidMessage 帧头不合法（魔数、版本或类型不匹配）。
	ErrInvalidMessage = errors.New("xdbg: invalid message")

	// ErrMessageTooLarge payload 超过协议上限。
	ErrMessageTooLarge = errors.New("xdbg: message too large")

	// ErrConnectionClosed 对端关闭了连接（正常的会话结束信号）。
	ErrConnectionClosed = errors.New("xdbg: connection closed")

	// ErrInvalidSocketPath socket 路径不合法。
	ErrInvalidSocketPath = errors.New("xdbg: invalid socket path")

	// ErrInvalidConfig 配置选项不合法。
	ErrInvalidConfig = errors.New("xdbg: invalid config")

	// ErrNotConfigured 命令依赖的组件未通过选项注入。
	ErrNotConfigured = errors.New("xdbg: component not configured")

	// ErrUnsupported 当前平台不支持调试服务（Windows）。
	ErrUnsupported = errors.New("xdbg: unsupported platform")
)
