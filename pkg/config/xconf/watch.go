package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/fsnotify/fsnotify"
)

// 监视器默认参数。
const (
	// DefaultDebounce 默认防抖时长。编辑器保存往往产生连续多个事件，
	// 防抖窗口内的事件合并为一次重载。
	DefaultDebounce = 100 * time.Millisecond

	// DefaultReloadAttempts 防抖结算后重载的默认尝试次数（含首次）。
	DefaultReloadAttempts = 5

	// DefaultReloadDelay 重载重试的默认间隔。
	DefaultReloadDelay = 20 * time.Millisecond
)

// WatchCallback 配置变更回调。每次防抖结算后的重载完成时调用，
// err 为该次重载的结果（nil 表示成功）。
type WatchCallback func(cfg Config, err error)

// Watcher 配置文件监视器：监控文件变更，防抖后自动重载。
//
// 原子保存（写临时文件后 rename 覆盖）会让目标路径短暂缺失或处于半写状态，
// 因此重载带短退避重试，吸收这个窗口。
type Watcher struct {
	cfg      *koanfConfig
	fsw      *fsnotify.Watcher
	callback WatchCallback
	filename string

	debounce       time.Duration
	reloadAttempts uint
	reloadDelay    time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	stopped bool
	timer   *time.Timer
}

// WatchOption 监视器配置选项。nil 被静默跳过。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce       time.Duration
	reloadAttempts uint
	reloadDelay    time.Duration
}

func defaultWatchOptions() *watchOptions {
	return &watchOptions{
		debounce:       DefaultDebounce,
		reloadAttempts: DefaultReloadAttempts,
		reloadDelay:    DefaultReloadDelay,
	}
}

// WithDebounce 设置防抖时长。必须为正，否则 Watch 返回 ErrInvalidDebounce。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		o.debounce = d
	}
}

// WithReloadAttempts 设置防抖结算后重载的尝试次数（含首次）。
// 必须至少为 1，否则 Watch 返回 ErrInvalidRetry；
// 设为 1 表示不重试。
func WithReloadAttempts(n uint) WatchOption {
	return func(o *watchOptions) {
		o.reloadAttempts = n
	}
}

// WithReloadDelay 设置重载重试间隔。负值使 Watch 返回 ErrInvalidRetry。
func WithReloadDelay(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		o.reloadDelay = d
	}
}

// Watch 创建配置文件监视器。
//
// 只支持从文件创建的 Config（xconf.New）；从字节数据创建的返回
// [ErrNotFromFile]。返回的 Watcher 需调用 Start（阻塞）或
// StartAsync（后台）开始监视，Stop 停止并释放资源。
//
// 监视的是配置文件所在目录而非文件本身：原子保存会先删除或移走旧文件，
// 直接监视文件会在 rename 后丢失事件。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	kc, ok := cfg.(*koanfConfig)
	if !ok {
		return nil, fmt.Errorf("%w: config must be created by this package", ErrWatchFailed)
	}
	if kc.isBytes {
		return nil, ErrNotFromFile
	}
	if kc.path == "" {
		return nil, ErrEmptyPath
	}
	if callback == nil {
		return nil, ErrNilCallback
	}

	options := defaultWatchOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	if options.debounce <= 0 {
		return nil, fmt.Errorf("%w: debounce must be positive, got %s", ErrInvalidDebounce, options.debounce)
	}
	if options.reloadAttempts == 0 {
		return nil, fmt.Errorf("%w: reload attempts must be at least 1", ErrInvalidRetry)
	}
	if options.reloadDelay < 0 {
		return nil, fmt.Errorf("%w: reload delay must be non-negative, got %s", ErrInvalidRetry, options.reloadDelay)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}

	dir := filepath.Dir(kc.path)
	if err := fsw.Add(dir); err != nil {
		closeErr := fsw.Close()
		return nil, errors.Join(
			fmt.Errorf("%w: cannot watch directory %s: %w", ErrWatchFailed, dir, err),
			closeErr,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		cfg:            kc,
		fsw:            fsw,
		callback:       callback,
		filename:       filepath.Base(kc.path),
		debounce:       options.debounce,
		reloadAttempts: options.reloadAttempts,
		reloadDelay:    options.reloadDelay,
		ctx:            ctx,
		cancel:         cancel,
	}, nil
}

// Start 启动监视并阻塞到 Stop 被调用。重复调用或 Stop 之后调用为 no-op。
func (w *Watcher) Start() {
	if !w.markRunning() {
		return
	}
	w.run()
}

// StartAsync 在后台 goroutine 中启动监视，立即返回。
// running 标志在启动 goroutine 之前置位，消除与 Stop 的竞态。
func (w *Watcher) StartAsync() {
	if !w.markRunning() {
		return
	}
	go w.run()
}

func (w *Watcher) markRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.stopped {
		return false
	}
	w.running = true
	return true
}

// Stop 停止监视并释放 fsnotify 资源。幂等；未启动的 Watcher 也可 Stop。
//
// Stop 之后不再安排新的重载；已进入执行的回调会先完成。
// 在回调内调用 Stop 是安全的。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	w.running = false

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.cancel()
	return w.fsw.Close()
}

// run 监视主循环。Events/Errors 通道关闭（Stop 关闭 fsnotify）或
// ctx 取消时退出。
func (w *Watcher) run() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

// handleEvent 处理文件系统事件：过滤目标文件，重置防抖定时器。
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != w.filename {
		return
	}

	// Write：就地修改；Create：rename 落位或编辑器新建；
	// Rename：旧文件被移走（原子保存的前半段）。
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.settle)
}

// settle 防抖结算：带重试地重载，然后通知回调。
func (w *Watcher) settle() {
	if w.ctx.Err() != nil {
		return
	}

	err := w.reloadWithRetry()

	// Stop 发生在重载期间：不再回调
	if w.ctx.Err() != nil {
		return
	}
	w.notify(err)
}

// reloadWithRetry 带短退避地重载。原子保存的 rename 窗口内路径可能
// 缺失或半写，固定间隔重试比指数退避更贴合毫秒级的窗口宽度。
func (w *Watcher) reloadWithRetry() error {
	return retry.New(
		retry.Context(w.ctx),
		retry.Attempts(w.reloadAttempts),
		retry.Delay(w.reloadDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(w.cfg.Reload)
}

// notify 调用用户回调，恢复其中的 panic，保护 timer goroutine。
func (w *Watcher) notify(err error) {
	if w.callback == nil {
		return
	}
	defer func() {
		_ = recover() // 用户回调的 panic 不终止监视
	}()
	w.callback(w.cfg, err)
}

// handleError 把 fsnotify 的运行期错误转交回调。
func (w *Watcher) handleError(err error) {
	w.notify(fmt.Errorf("%w: %w", ErrWatchFailed, err))
}

// WatchConfig 带监视能力的 Config。
type WatchConfig interface {
	Config

	// Watch 监视配置文件变更，变更时自动重载并调用 callback。
	Watch(callback WatchCallback, opts ...WatchOption) (*Watcher, error)
}

// 确保 *koanfConfig 实现 WatchConfig 接口
var _ WatchConfig = (*koanfConfig)(nil)

// Watch 实现 WatchConfig 接口。
func (c *koanfConfig) Watch(callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	return Watch(c, callback, opts...)
}
