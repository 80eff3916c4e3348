package xdbg

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/omeyang/basekit/pkg/concurrency/xlock"
	"github.com/omeyang/basekit/pkg/observability/xlog"
	"github.com/omeyang/basekit/pkg/util/xfile"
)

// 默认配置。
const (
	// DefaultSocketPath 默认 socket 路径。
	DefaultSocketPath = "/var/run/basekit-debug.sock"

	// DefaultSocketPerm 默认 socket 文件权限（仅 owner 可读写）。
	DefaultSocketPerm fs.FileMode = 0o600

	// DefaultMaxSessions 默认并发会话上限。
	// 调试服务一次一个操作者是常态，默认收紧到 1。
	DefaultMaxSessions = 1

	// DefaultCommandTimeout 默认单命令执行超时。
	DefaultCommandTimeout = 30 * time.Second

	// DefaultIdleTimeout 默认会话空闲超时：连接上在此时限内
	// 未发来下一个请求即断开，防止空连接占住会话槽。
	DefaultIdleTimeout = 60 * time.Second

	// DefaultWriteTimeout 默认响应写超时，防止不读数据的客户端
	// 阻塞服务端 goroutine。
	DefaultWriteTimeout = 10 * time.Second

	// DefaultShutdownTimeout 默认 Stop 等待在途会话退出的时限。
	DefaultShutdownTimeout = 5 * time.Second
)

// maxSessionsLimit 会话上限的硬顶，防止误配置。
const maxSessionsLimit = 64

type options struct {
	socketPath      string
	socketPerm      fs.FileMode
	maxSessions     int
	commandTimeout  time.Duration
	idleTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	maxOutputSize   int

	manager   xlock.Manager
	leveler   xlog.Leveler
	logger    xlog.Logger
	transport Transport
}

// Option 定义 Server 可选配置。
type Option func(*options)

func defaultOptions() *options {
	return &options{
		socketPath:      DefaultSocketPath,
		socketPerm:      DefaultSocketPerm,
		maxSessions:     DefaultMaxSessions,
		commandTimeout:  DefaultCommandTimeout,
		idleTimeout:     DefaultIdleTimeout,
		writeTimeout:    DefaultWriteTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		maxOutputSize:   DefaultMaxOutputSize,
	}
}

// WithSocketPath 设置 Unix Socket 路径。
// 必须是绝对路径，且不得落在系统敏感目录内。
func WithSocketPath(path string) Option {
	return func(o *options) {
		o.socketPath = path
	}
}

// WithSocketPerm 设置 socket 文件权限。
// 不允许授予 other 任何权限（调试命令可改日志级别，按高危对待）。
func WithSocketPerm(perm fs.FileMode) Option {
	return func(o *options) {
		o.socketPerm = perm
	}
}

// WithMaxSessions 设置并发会话上限，超限的连接被拒绝。
func WithMaxSessions(n int) Option {
	return func(o *options) {
		o.maxSessions = n
	}
}

// WithCommandTimeout 设置单命令执行超时。
func WithCommandTimeout(d time.Duration) Option {
	return func(o *options) {
		o.commandTimeout = d
	}
}

// WithIdleTimeout 设置会话空闲超时。0 表示不限制。
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.idleTimeout = d
	}
}

// WithWriteTimeout 设置响应写超时。0 表示不限制。
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

// WithShutdownTimeout 设置 Stop 等待在途会话的时限。
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		o.shutdownTimeout = d
	}
}

// WithMaxOutputSize 设置命令输出上限（字节），超出部分被截断。
// 不得超过 [DefaultMaxOutputSize]（协议单帧所能承载的上限）。
func WithMaxOutputSize(n int) Option {
	return func(o *options) {
		o.maxOutputSize = n
	}
}

// WithManager 注入锁管理器，启用 locks / deadlocks 命令。
// 未注入时这两条命令返回 [ErrNotConfigured]。
func WithManager(m xlock.Manager) Option {
	return func(o *options) {
		o.manager = m
	}
}

// WithLeveler 注入日志级别控制器，启用 loglevel 命令。
// xlog.Build() 返回的 LoggerWithLevel 可直接传入。
func WithLeveler(l xlog.Leveler) Option {
	return func(o *options) {
		o.leveler = l
	}
}

// WithLogger 设置服务自身的日志记录器。
// 会话起止、命令执行与失败都会经它输出。nil 表示不记录。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTransport 注入自定义传输层，绕过内置的 Unix Socket 实现。
// 主要用于测试。
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

func (o *options) validate() error {
	if o.maxSessions <= 0 || o.maxSessions > maxSessionsLimit {
		return fmt.Errorf("%w: max sessions must be in [1, %d], got %d",
			ErrInvalidConfig, maxSessionsLimit, o.maxSessions)
	}
	if o.commandTimeout <= 0 {
		return fmt.Errorf("%w: command timeout must be positive, got %v",
			ErrInvalidConfig, o.commandTimeout)
	}
	if o.idleTimeout < 0 || o.writeTimeout < 0 {
		return fmt.Errorf("%w: timeouts must be non-negative", ErrInvalidConfig)
	}
	if o.shutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive, got %v",
			ErrInvalidConfig, o.shutdownTimeout)
	}
	if o.maxOutputSize <= 0 || o.maxOutputSize > DefaultMaxOutputSize {
		return fmt.Errorf("%w: max output size must be in (0, %d], got %d",
			ErrInvalidConfig, DefaultMaxOutputSize, o.maxOutputSize)
	}
	if o.socketPerm == 0 || o.socketPerm&0o007 != 0 {
		return fmt.Errorf("%w: socket perm must not grant 'other' access, got %04o",
			ErrInvalidConfig, o.socketPerm)
	}
	// 自定义传输层时 socket 路径不参与监听，跳过路径校验。
	if o.transport != nil {
		return nil
	}
	return validateSocketPath(o.socketPath)
}

// sensitiveDirs 禁止放置 socket 的系统目录。
var sensitiveDirs = []string{
	"/etc/", "/usr/", "/bin/", "/sbin/", "/boot/", "/proc/", "/sys/", "/dev/",
}

// validateSocketPath 校验 socket 路径：格式净化交给 xfile，
// 绝对路径与敏感目录检查在此补足。
func validateSocketPath(path string) error {
	cleaned, err := xfile.SanitizePath(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSocketPath, err)
	}
	if !filepath.IsAbs(cleaned) {
		return fmt.Errorf("%w: must be absolute, got %q", ErrInvalidSocketPath, path)
	}
	for _, dir := range sensitiveDirs {
		if strings.HasPrefix(cleaned, dir) {
			return fmt.Errorf("%w: %q is in a sensitive directory", ErrInvalidSocketPath, path)
		}
	}
	return nil
}
