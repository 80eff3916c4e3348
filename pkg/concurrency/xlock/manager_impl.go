package xlock

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// record 是注册表中的一把锁。
// name/order/description/lock 注册后不变；owner/holder/acquiredAt
// 是诊断字段，由 manager.mu 保护，仅在持有底层原语期间写入。
type record struct {
	name        string
	order       int
	description string
	lock        *Mutex

	owner      int64
	holder     string
	acquiredAt time.Time
}

// manager 是 Manager 的注册表实现。
type manager struct {
	opts    *options
	metrics *metrics
	tracer  trace.Tracer

	// mu 保护注册表结构和 record 的诊断字段。
	// 绝不跨越阻塞的锁获取持有。
	mu     sync.RWMutex
	locks  map[string]*record
	orders map[int]string
}

func newManager(o *options, metrics *metrics) *manager {
	return &manager{
		opts:    o,
		locks:   make(map[string]*record),
		orders:  make(map[int]string),
		metrics: metrics,
		tracer:  getTracer(o.tracerProvider),
	}
}

func (m *manager) Register(name string, order int, opts ...RegisterOption) (*Mutex, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	ro := &registerOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(ro)
		}
	}
	mu := ro.mutex
	if mu == nil {
		mu = NewMutex()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.locks[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if existing, ok := m.orders[order]; ok {
		return nil, fmt.Errorf("%w: order %d already held by %q", ErrOrderConflict, order, existing)
	}
	m.locks[name] = &record{
		name:        name,
		order:       order,
		description: ro.description,
		lock:        mu,
	}
	m.orders[order] = name
	return mu, nil
}

func (m *manager) Get(name string) (*Mutex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.locks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return rec.lock, nil
}

func (m *manager) Acquire(ctx context.Context, names []string, opts ...AcquireOption) (*Scope, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	ao := &acquireOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(ao)
		}
	}
	if err := ao.validate(); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, m.tracer, spanNameAcquire, acquireSpanAttributes(names, ao)...)
	defer span.End()

	start := time.Now()
	sc, err := m.acquire(ctx, names, ao, start)
	duration := time.Since(start)
	if err != nil {
		setSpanError(span, err)
		m.metrics.recordAcquire(ctx, len(names), false, failReason(err), duration)
		return nil, err
	}
	setSpanOK(span)
	m.metrics.recordAcquire(ctx, len(names), true, "", duration)
	return sc, nil
}

// acquire 执行核心获取序列。
// 任何失败路径都通过 sc.Release() 按 LIFO 回滚本次已获取的锁。
func (m *manager) acquire(ctx context.Context, names []string, ao *acquireOptions, start time.Time) (*Scope, error) {
	sc := &Scope{mgr: m, ctx: ctx, holder: ao.holder}
	if len(names) == 0 {
		return sc, nil
	}

	// 先解析全部名字：任何缺失都在获取任何锁之前失败。
	m.mu.RLock()
	recs := make([]*record, 0, len(names))
	for _, name := range names {
		rec, ok := m.locks[name]
		if !ok {
			m.mu.RUnlock()
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		recs = append(recs, rec)
	}
	m.mu.RUnlock()

	// 按注册顺序号升序获取。顺序号全局唯一，无需次级排序键。
	slices.SortFunc(recs, func(a, b *record) int { return cmp.Compare(a.order, b.order) })

	inherited := m.stackFrom(ctx)
	deadline := start.Add(ao.effectiveTimeout(m.opts.defaultTimeout))

	for _, rec := range recs {
		// 重入检查先于顺序检查：重获已持有的锁不是顺序违规。
		// 同一次调用中重复出现的名字也走这里（第一次获取后即视为已持有）。
		if slices.Contains(inherited, rec) || slices.Contains(sc.acquired, rec) {
			m.metrics.recordReentrant(ctx, rec.name)
			continue
		}
		if maxOrder, holding := maxHeldOrder(inherited, sc.acquired); holding && rec.order <= maxOrder {
			vErr := &OrderViolationError{
				Name:         rec.name,
				Order:        rec.order,
				MaxHeldOrder: maxOrder,
				HeldNames:    heldNames(inherited, sc.acquired),
			}
			m.logViolation(ctx, vErr)
			m.metrics.recordViolation(ctx, rec.name)
			sc.Release()
			return nil, vErr
		}
		if err := m.lockOne(ctx, rec, ao, deadline); err != nil {
			sc.Release()
			return nil, err
		}
		m.stamp(rec, ao.holder)
		sc.acquired = append(sc.acquired, rec)
	}

	// 成功：向派生 ctx 压入合并后的获取栈，嵌套获取由此识别重入。
	combined := make([]*record, 0, len(inherited)+len(sc.acquired))
	combined = append(combined, inherited...)
	combined = append(combined, sc.acquired...)
	sc.ctx = m.withStack(ctx, combined)
	return sc, nil
}

// lockOne 获取单把锁。
// 阻塞模式下使用共享预算的剩余量；预算耗尽直接按超时失败，
// 不触碰底层原语。非阻塞模式遇到占用立即失败。
func (m *manager) lockOne(ctx context.Context, rec *record, ao *acquireOptions, deadline time.Time) error {
	if ao.nonBlocking {
		if !rec.lock.TryLock() {
			return fmt.Errorf("%w: %q", ErrWouldBlock, rec.name)
		}
		return nil
	}

	// 剩余预算来自单调时钟，永不为负。
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return fmt.Errorf("%w: %q (budget exhausted)", ErrAcquireTimeout, rec.name)
	}
	lockCtx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()
	if err := rec.lock.Lock(lockCtx); err != nil {
		// 调用方取消优先于预算超时上报。
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %q after %s", ErrAcquireTimeout, rec.name, remaining.Round(time.Millisecond))
	}
	return nil
}

func (m *manager) Do(ctx context.Context, names []string, fn func(ctx context.Context) error, opts ...AcquireOption) error {
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	sc, err := m.Acquire(ctx, names, opts...)
	if err != nil {
		return err
	}
	// defer 保证 fn panic 时同样按 LIFO 释放，然后 panic 继续传播。
	defer sc.Release()
	return fn(sc.Context())
}

func (m *manager) Status() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Status, len(m.locks))
	for name, rec := range m.locks {
		out[name] = Status{
			Name:        name,
			Order:       rec.order,
			Description: rec.description,
			Owner:       rec.owner,
			Holder:      rec.holder,
			AcquiredAt:  rec.acquiredAt,
			Held:        rec.lock.Locked(),
		}
	}
	return out
}

func (m *manager) DetectPotentialDeadlocks() []Warning {
	now := time.Now()

	m.mu.RLock()
	var warns []Warning
	for _, rec := range m.locks {
		if rec.acquiredAt.IsZero() {
			continue
		}
		heldFor := now.Sub(rec.acquiredAt)
		if heldFor <= m.opts.holdWarnThreshold {
			continue
		}
		warns = append(warns, Warning{
			Name:       rec.name,
			Order:      rec.order,
			Owner:      rec.owner,
			Holder:     rec.holder,
			AcquiredAt: rec.acquiredAt,
			HeldFor:    heldFor,
		})
	}
	m.mu.RUnlock()

	slices.SortFunc(warns, func(a, b Warning) int { return strings.Compare(a.Name, b.Name) })
	m.metrics.recordWarnings(context.Background(), len(warns))
	return warns
}

// stamp 在成功获取底层原语后写入持有者诊断信息。
// 此时只有持有者会写这些字段，m.mu 仅用于与读侧快照同步。
func (m *manager) stamp(rec *record, holder string) {
	m.mu.Lock()
	rec.owner = goid()
	rec.holder = holder
	rec.acquiredAt = time.Now()
	m.mu.Unlock()
}

// releaseRecord 清空诊断信息并释放底层原语。
// 清空发生在 Unlock 之前（此时仍持有原语），与下一个持有者的
// stamp 不会交错。释放失败只记录日志，绝不中断调用方的释放序列。
func (m *manager) releaseRecord(ctx context.Context, rec *record) {
	m.mu.Lock()
	rec.owner = 0
	rec.holder = ""
	rec.acquiredAt = time.Time{}
	m.mu.Unlock()

	if err := rec.lock.Unlock(); err != nil {
		if m.opts.logger != nil {
			m.opts.logger.Error(ctx, "lock release failed",
				slog.String("lock", rec.name),
				slog.Any("error", err))
		}
		return
	}
	m.metrics.recordRelease(ctx, rec.name)
}

// releaseLIFO 按获取的逆序释放一组锁。
func (m *manager) releaseLIFO(ctx context.Context, recs []*record) {
	for i := len(recs) - 1; i >= 0; i-- {
		m.releaseRecord(ctx, recs[i])
	}
}

func (m *manager) logViolation(ctx context.Context, vErr *OrderViolationError) {
	if m.opts.logger == nil {
		return
	}
	m.opts.logger.Error(ctx, "lock order violation",
		slog.String("lock", vErr.Name),
		slog.Int("order", vErr.Order),
		slog.Int("max_held_order", vErr.MaxHeldOrder),
		slog.Any("held", vErr.HeldNames))
}

// maxHeldOrder 返回调用方当前持有的最大顺序号。
// holding 为 false 表示什么都没持有（此时首个获取永不违规）。
func maxHeldOrder(inherited, acquired []*record) (maxOrder int, holding bool) {
	for _, r := range inherited {
		if !holding || r.order > maxOrder {
			maxOrder, holding = r.order, true
		}
	}
	for _, r := range acquired {
		if !holding || r.order > maxOrder {
			maxOrder, holding = r.order, true
		}
	}
	return maxOrder, holding
}

// heldNames 返回当前持有的锁名（继承栈在前，本次新获取在后）。
func heldNames(inherited, acquired []*record) []string {
	names := make([]string, 0, len(inherited)+len(acquired))
	for _, r := range inherited {
		names = append(names, r.name)
	}
	for _, r := range acquired {
		names = append(names, r.name)
	}
	return names
}

// 编译期接口检查。
var _ Manager = (*manager)(nil)
