package xlock

import (
	"context"
	"fmt"
	"time"
)

// Manager 是命名有序锁的注册表与协调器。
// 所有方法都是并发安全的。注册表内部互斥锁绝不跨越阻塞获取持有，
// 因此 Register/Get/Status 不会被慢速的 Acquire 阻塞。
type Manager interface {
	// Register 注册一把新锁，绑定唯一 name 和唯一 order。
	// 返回底层 Mutex，调用方可直接使用（裸用时不可重入）。
	// 重名返回 [ErrDuplicateName]，顺序冲突返回 [ErrOrderConflict]，
	// 两种失败都不改变注册表。name 不得为空，否则返回 [ErrEmptyName]。
	Register(name string, order int, opts ...RegisterOption) (*Mutex, error)

	// Get 按名字查找已注册的锁。
	// 未注册返回 [ErrNotFound]。
	Get(name string) (*Mutex, error)

	// Acquire 原子地获取一组命名锁。
	//
	// 名字按注册顺序号升序排序后依次获取；调用方（以 ctx 携带的
	// 获取栈识别）已持有的锁直接跳过（可重入）；顺序号不严格大于
	// 当前持有最大顺序号的获取立即失败并返回 [*OrderViolationError]。
	// 阻塞模式下整组共享一个超时预算（默认 Manager 级配置），
	// 预算耗尽返回 [ErrAcquireTimeout]；NonBlocking 模式遇到占用
	// 立即返回 [ErrWouldBlock]。任何失败都会按 LIFO 回滚本次已
	// 获取的锁，调用方不会处于半持有状态。
	//
	// 空名字列表返回一个无操作的 Scope。ctx 不得为 nil。
	// 成功后必须使用 Scope.Context() 作为临界区的 context，
	// 嵌套获取才能识别重入；并确保调用 Scope.Release()。
	// 推荐使用 Do，它自动完成这两件事。
	Acquire(ctx context.Context, names []string, opts ...AcquireOption) (*Scope, error)

	// Do 在持有一组命名锁的前提下执行 fn。
	// fn 收到携带获取栈的派生 ctx，嵌套的 Do/Acquire 自动识别重入。
	// 无论 fn 正常返回、出错还是 panic，锁都会按 LIFO 释放
	// （panic 时释放后原样继续抛出）。fn 的错误原样返回，
	// 释放失败只记录日志，绝不掩盖 fn 的错误。
	Do(ctx context.Context, names []string, fn func(ctx context.Context) error, opts ...AcquireOption) error

	// Status 返回所有已注册锁的诊断快照（name → Status）。
	// 快照是瞬时的，持有者信息可能在返回后立即失效。
	Status() map[string]Status

	// DetectPotentialDeadlocks 返回持有时间超过阈值的锁告警，
	// 按锁名排序。这是长持有启发式而非等待图死锁检测：
	// 结果提示"某处可能卡住了"，不证明存在环路等待。
	DetectPotentialDeadlocks() []Warning
}

// Status 是单把锁的诊断快照。
type Status struct {
	// Name 锁名。
	Name string
	// Order 注册时绑定的顺序号。
	Order int
	// Description 注册时的描述。
	Description string
	// Owner 当前持有者的 goroutine id，未持有时为 0。
	// 仅供诊断：重入语义跟随 context 而非 goroutine。
	Owner int64
	// Holder 获取时通过 [WithHolder] 设置的持有者标签。
	Holder string
	// AcquiredAt 当前持有开始的时刻，未持有时为零值。
	AcquiredAt time.Time
	// Held 底层原语的瞬时占用状态（尽力而为）。
	Held bool
}

// Warning 是一条长持有告警。
type Warning struct {
	// Name 锁名。
	Name string
	// Order 顺序号。
	Order int
	// Owner 持有者 goroutine id。
	Owner int64
	// Holder 持有者标签（可能为空）。
	Holder string
	// AcquiredAt 持有开始时刻。
	AcquiredAt time.Time
	// HeldFor 截至检测时刻的持有时长。
	HeldFor time.Duration
}

// String 返回人类可读的告警描述。
func (w Warning) String() string {
	if w.Holder != "" {
		return fmt.Sprintf("xlock: potential deadlock: %q (order %d) held for %s by goroutine %d (%s)",
			w.Name, w.Order, w.HeldFor.Round(time.Millisecond), w.Owner, w.Holder)
	}
	return fmt.Sprintf("xlock: potential deadlock: %q (order %d) held for %s by goroutine %d",
		w.Name, w.Order, w.HeldFor.Round(time.Millisecond), w.Owner)
}

// New 创建一个新的 Manager 实例。
// 配置无效时返回错误（如非正的超时或阈值）。
func New(opts ...Option) (Manager, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	metrics, err := newMetrics(o.meterProvider)
	if err != nil {
		return nil, err
	}
	return newManager(o, metrics), nil
}
