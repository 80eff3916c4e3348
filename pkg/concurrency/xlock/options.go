package xlock

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/basekit/pkg/observability/xlog"
)

// =============================================================================
// Manager 选项
// =============================================================================

// Option 定义 Manager 可选配置。
type Option func(*options)

type options struct {
	defaultTimeout    time.Duration
	holdWarnThreshold time.Duration
	logger            xlog.Logger
	meterProvider     metric.MeterProvider
	tracerProvider    trace.TracerProvider
}

func defaultOptions() *options {
	return &options{
		defaultTimeout:    DefaultAcquireTimeout,
		holdWarnThreshold: DefaultHoldWarnThreshold,
	}
}

// WithDefaultTimeout 设置 Acquire 的默认超时预算。
// 单次调用可通过 [WithTimeout] 覆盖。d 必须为正，否则 New 返回错误。
// 默认 [DefaultAcquireTimeout]。
func WithDefaultTimeout(d time.Duration) Option {
	return func(o *options) {
		o.defaultTimeout = d
	}
}

// WithHoldWarnThreshold 设置长持有告警阈值。
// DetectPotentialDeadlocks 报告持有时间超过此阈值的锁。
// d 必须为正，否则 New 返回错误。默认 [DefaultHoldWarnThreshold]。
func WithHoldWarnThreshold(d time.Duration) Option {
	return func(o *options) {
		o.holdWarnThreshold = d
	}
}

// WithLogger 设置日志记录器。
// 顺序违规与释放失败会通过它高声报告。nil 表示不记录。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider 设置 OTel MeterProvider 以启用指标收集。
// nil 表示不收集指标（默认）。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracerProvider 设置 OTel TracerProvider 以启用链路追踪。
// nil 时使用全局 TracerProvider（通常为 noop）。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

func (o *options) validate() error {
	if o.defaultTimeout <= 0 {
		return fmt.Errorf("%w: default timeout must be positive, got %v",
			ErrInvalidTimeout, o.defaultTimeout)
	}
	if o.holdWarnThreshold <= 0 {
		return fmt.Errorf("%w: must be positive, got %v",
			ErrInvalidThreshold, o.holdWarnThreshold)
	}
	return nil
}

// =============================================================================
// Register 选项
// =============================================================================

// RegisterOption 定义单把锁的注册配置。
type RegisterOption func(*registerOptions)

type registerOptions struct {
	description string
	mutex       *Mutex
}

// WithDescription 设置锁的人类可读描述，出现在状态快照和告警中。
func WithDescription(desc string) RegisterOption {
	return func(o *registerOptions) {
		o.description = desc
	}
}

// WithMutex 使用调用方预先创建的 Mutex 而非新建。
// 适用于锁对象需要先于注册存在的场景。nil 时忽略（新建）。
func WithMutex(mu *Mutex) RegisterOption {
	return func(o *registerOptions) {
		o.mutex = mu
	}
}

// =============================================================================
// Acquire 选项
// =============================================================================

// AcquireOption 定义单次获取的配置。
type AcquireOption func(*acquireOptions)

type acquireOptions struct {
	timeout     time.Duration
	timeoutSet  bool // 区分显式 WithTimeout(0) 与未设置
	nonBlocking bool
	holder      string
}

// WithTimeout 覆盖本次获取的超时预算。
// 整个名字序列共享这一个预算。d <= 0 时 Acquire 返回 [ErrInvalidTimeout]。
func WithTimeout(d time.Duration) AcquireOption {
	return func(o *acquireOptions) {
		o.timeout = d
		o.timeoutSet = true
	}
}

// NonBlocking 切换为非阻塞模式：任何一把锁已被持有时立即返回
// [ErrWouldBlock] 并回滚，不等待。
func NonBlocking() AcquireOption {
	return func(o *acquireOptions) {
		o.nonBlocking = true
	}
}

// WithHolder 设置持有者标签，出现在状态快照和长持有告警中。
// 便于在诊断输出里定位业务侧的持有方。
func WithHolder(label string) AcquireOption {
	return func(o *acquireOptions) {
		o.holder = label
	}
}

func (o *acquireOptions) validate() error {
	if o.timeoutSet && o.timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %v",
			ErrInvalidTimeout, o.timeout)
	}
	return nil
}

// effectiveTimeout 返回本次获取实际使用的超时预算。
func (o *acquireOptions) effectiveTimeout(managerDefault time.Duration) time.Duration {
	if o.timeoutSet {
		return o.timeout
	}
	return managerDefault
}
