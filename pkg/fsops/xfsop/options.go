package xfsop

import (
	"fmt"
	"time"

	"github.com/omeyang/basekit/pkg/observability/xlog"
	"github.com/omeyang/basekit/pkg/util/xid"
)

const (
	// DefaultWindow 窗口静默期：最后一个事件之后等待此时长再结算。
	DefaultWindow = 500 * time.Millisecond

	// DefaultMaxPaths Tracker 同时追踪的活动窗口上限。
	DefaultMaxPaths = 1024

	// DefaultShardCount 互斥分片数（按目录哈希），必须为 2 的幂。
	DefaultShardCount = 32

	// DefaultOperationBuffer Watcher 操作通道的缓冲大小。
	DefaultOperationBuffer = 64

	// DefaultErrorBuffer Watcher 错误通道的缓冲大小。
	DefaultErrorBuffer = 16
)

// =============================================================================
// Tracker 选项
// =============================================================================

// TrackerOption 定义 Tracker 可选配置。
type TrackerOption func(*trackerOptions)

type trackerOptions struct {
	window      time.Duration
	maxPaths    int
	shardCount  int
	idFunc      func() (string, error)
	logger      xlog.Logger
	emitUnknown bool
	classify    *classifyOptions
}

func defaultTrackerOptions() *trackerOptions {
	return &trackerOptions{
		window:     DefaultWindow,
		maxPaths:   DefaultMaxPaths,
		shardCount: DefaultShardCount,
		idFunc:     xid.NewString,
		classify:   defaultClassifyOptions(),
	}
}

// WithWindow 设置窗口静默期。事件到达会重置所属窗口的计时，静默满
// d 才结算归类。d 必须为正，否则 NewTracker 返回错误。
// 默认 [DefaultWindow]。
func WithWindow(d time.Duration) TrackerOption {
	return func(o *trackerOptions) {
		o.window = d
	}
}

// WithMaxPaths 设置同时追踪的活动窗口上限。超限时最久未活跃的窗口
// 被提前结算。n 必须为正，默认 [DefaultMaxPaths]。
func WithMaxPaths(n int) TrackerOption {
	return func(o *trackerOptions) {
		o.maxPaths = n
	}
}

// WithShardCount 设置互斥分片数，必须为 2 的幂。同一目录的事件落在
// 同一分片上，临时文件与目标的归并只需一把锁。默认 [DefaultShardCount]。
func WithShardCount(n int) TrackerOption {
	return func(o *trackerOptions) {
		o.shardCount = n
	}
}

// WithIDFunc 替换 Operation.ID 的分配函数。默认 [xid.NewString]。
// 不可为 nil。
func WithIDFunc(fn func() (string, error)) TrackerOption {
	return func(o *trackerOptions) {
		o.idFunc = fn
	}
}

// WithLogger 设置日志记录器。ID 分配失败与投递丢弃会通过它告警。
// nil 表示不记录。
func WithLogger(logger xlog.Logger) TrackerOption {
	return func(o *trackerOptions) {
		o.logger = logger
	}
}

// WithEmitUnknown 让无法归类的窗口也以 [KindUnknown] 回调，
// 默认只回调归类成功的操作。
func WithEmitUnknown() TrackerOption {
	return func(o *trackerOptions) {
		o.emitUnknown = true
	}
}

// WithClassifyOptions 定制归类识别表（追加临时/备份形态）。
// 识别表同时约束事件归并：可推导目标的临时名会直接归入目标窗口。
func WithClassifyOptions(opts ...ClassifyOption) TrackerOption {
	return func(o *trackerOptions) {
		for _, opt := range opts {
			if opt != nil {
				opt(o.classify)
			}
		}
	}
}

func (o *trackerOptions) validate() error {
	if o.window <= 0 {
		return fmt.Errorf("%w: must be positive, got %v", ErrInvalidWindow, o.window)
	}
	if o.maxPaths <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidMaxPaths, o.maxPaths)
	}
	if o.shardCount <= 0 || o.shardCount&(o.shardCount-1) != 0 {
		return fmt.Errorf("%w: must be a power of two, got %d",
			ErrInvalidShardCount, o.shardCount)
	}
	if o.idFunc == nil {
		return ErrNilIDFunc
	}
	return nil
}

// =============================================================================
// Watcher 选项
// =============================================================================

// WatcherOption 定义 Watcher 可选配置。
type WatcherOption func(*watcherOptions)

type watcherOptions struct {
	opBuffer    int
	errBuffer   int
	trackerOpts []TrackerOption
}

func defaultWatcherOptions() *watcherOptions {
	return &watcherOptions{
		opBuffer:  DefaultOperationBuffer,
		errBuffer: DefaultErrorBuffer,
	}
}

// WithOperationBuffer 设置操作通道缓冲。缓冲写满时后续操作被丢弃并
// 告警（消费方长期不取走是使用错误）。n 必须为正，
// 默认 [DefaultOperationBuffer]。
func WithOperationBuffer(n int) WatcherOption {
	return func(o *watcherOptions) {
		o.opBuffer = n
	}
}

// WithErrorBuffer 设置错误通道缓冲。n 必须为正，默认 [DefaultErrorBuffer]。
func WithErrorBuffer(n int) WatcherOption {
	return func(o *watcherOptions) {
		o.errBuffer = n
	}
}

// WithTracker 定制 Watcher 内部的 Tracker（窗口时长、识别表、日志等）。
// Watcher 的告警日志与 Tracker 共用同一记录器，经
// WithTracker(WithLogger(...)) 设置。
func WithTracker(opts ...TrackerOption) WatcherOption {
	return func(o *watcherOptions) {
		o.trackerOpts = append(o.trackerOpts, opts...)
	}
}

func (o *watcherOptions) validate() error {
	if o.opBuffer <= 0 {
		return fmt.Errorf("%w: operation buffer must be positive, got %d",
			ErrInvalidBuffer, o.opBuffer)
	}
	if o.errBuffer <= 0 {
		return fmt.Errorf("%w: error buffer must be positive, got %d",
			ErrInvalidBuffer, o.errBuffer)
	}
	return nil
}
