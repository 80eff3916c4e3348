package xlock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/basekit/pkg/observability/xlog"
)

// Monitor 周期性运行 DetectPotentialDeadlocks，把每条告警写入日志。
// 适用于希望持续监视长持有而不是在出事后手工查询的应用。
type Monitor struct {
	mgr      Manager
	logger   xlog.Logger
	interval time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

// MonitorOption 定义 Monitor 可选配置。
type MonitorOption func(*monitorOptions)

type monitorOptions struct {
	interval time.Duration
	logger   xlog.Logger
}

// WithMonitorInterval 设置扫描间隔。
// d 必须为正，否则 NewMonitor 返回错误。默认 [DefaultMonitorInterval]。
func WithMonitorInterval(d time.Duration) MonitorOption {
	return func(o *monitorOptions) {
		o.interval = d
	}
}

// WithMonitorLogger 设置告警输出的日志记录器。
// 未设置时使用 xlog.Default()。
func WithMonitorLogger(logger xlog.Logger) MonitorOption {
	return func(o *monitorOptions) {
		o.logger = logger
	}
}

// NewMonitor 创建围绕 m 的长持有监视器。
// m 不得为 nil。创建后调用 Start 启动周期扫描。
func NewMonitor(m Manager, opts ...MonitorOption) (*Monitor, error) {
	if m == nil {
		return nil, ErrNilManager
	}
	o := &monitorOptions{interval: DefaultMonitorInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.interval <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %v", ErrInvalidInterval, o.interval)
	}
	logger := o.logger
	if logger == nil {
		logger = xlog.Default()
	}
	return &Monitor{mgr: m, logger: logger, interval: o.interval}, nil
}

// Start 启动周期扫描。重复调用是无操作。
func (mo *Monitor) Start() error {
	mo.mu.Lock()
	defer mo.mu.Unlock()

	if mo.started {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", mo.interval), mo.scan); err != nil {
		return fmt.Errorf("xlock: add monitor job: %w", err)
	}
	c.Start()
	mo.cron = c
	mo.started = true
	return nil
}

// Stop 停止周期扫描，等待在途扫描完成后返回。
// 未启动时是无操作。停止后可再次 Start。
func (mo *Monitor) Stop() {
	mo.mu.Lock()
	defer mo.mu.Unlock()

	if !mo.started {
		return
	}
	<-mo.cron.Stop().Done()
	mo.cron = nil
	mo.started = false
}

// scan 执行一轮检测并记录告警。
func (mo *Monitor) scan() {
	warns := mo.mgr.DetectPotentialDeadlocks()
	if len(warns) == 0 {
		return
	}
	ctx := context.Background()
	for _, w := range warns {
		mo.logger.Warn(ctx, "potential deadlock detected",
			slog.String("lock", w.Name),
			slog.Int("order", w.Order),
			slog.Int64("owner_goroutine", w.Owner),
			slog.String("holder", w.Holder),
			slog.Duration("held_for", w.HeldFor))
	}
}
