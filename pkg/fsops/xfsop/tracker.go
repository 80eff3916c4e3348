package xfsop

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/omeyang/basekit/pkg/observability/xlog"
	"github.com/omeyang/basekit/pkg/util/xlru"
)

// pendingBase 同目录下暂时无法归属目标的事件（不可推导的临时名）挂在
// 此合成键下，真实目标一出现就并入其窗口。空字节不会出现在真实文件名中。
const pendingBase = "\x00pending"

// evictBuffer 被容量淘汰的窗口排队等待提前结算的队列长度。
const evictBuffer = 64

// forceSettle 跳过定时器代数检查（淘汰/Close 路径使用）。
const forceSettle = 0

// seqEvent 带全局到达序号的事件，窗口合并时按序号归并。
type seqEvent struct {
	ev  fsnotify.Event
	seq uint64
}

// pathWindow 一个 (目录, 目标文件) 的滑动事件窗口。
// events/timer/gen 由所属分片锁保护；settled 的翻转同样发生在分片锁下，
// 淘汰回调只做无锁读。
type pathWindow struct {
	key     string
	dir     string
	events  []seqEvent
	timer   *time.Timer
	gen     uint64
	settled atomic.Bool
}

// stopTimer 停掉窗口计时器。调用方必须持有所属分片锁。
func (w *pathWindow) stopTimer() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Tracker 把乱序到达的 fsnotify 事件按 (目录, 目标文件) 汇成滑动窗口，
// 窗口静默期满后结算：Classify 归类，结果交给 handler。
//
// 临时/备份文件的事件按推导出的目标归并到同一窗口；无法推导目标的
// 临时名（.goutputstream-*、4913）先挂在目录的待定窗口，目标出现时并入。
// 活动窗口数以 LRU 封顶，最久未活跃的窗口被提前结算。
//
// handler 在定时器、淘汰清理或 Close 的 goroutine 上被调用，期间不持有
// Tracker 的任何锁，回调内可以再调用 Feed。
type Tracker struct {
	opts    *trackerOptions
	handler func(Operation)

	windows *xlru.Cache[string, *pathWindow]
	shards  []sync.Mutex
	mask    uint64

	seq       atomic.Uint64
	closed    atomic.Bool
	evictCh   chan *pathWindow
	drainWG   sync.WaitGroup
	closeOnce sync.Once
}

// NewTracker 创建 Tracker 并启动淘汰清理 goroutine。
// handler 不可为 nil；每个结算出的 Operation 恰好回调一次。
func NewTracker(handler func(Operation), opts ...TrackerOption) (*Tracker, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	o := defaultTrackerOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	t := &Tracker{
		opts:    o,
		handler: handler,
		shards:  make([]sync.Mutex, o.shardCount),
		mask:    uint64(o.shardCount - 1),
		evictCh: make(chan *pathWindow, evictBuffer),
	}
	windows, err := xlru.New(o.maxPaths, xlru.WithOnEvicted(t.onEvict))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMaxPaths, err)
	}
	t.windows = windows

	t.drainWG.Add(1)
	go t.drainEvicted()
	return t, nil
}

// shardFor 返回目录对应的分片锁。同一目录恒落在同一分片上，
// 临时文件与目标窗口的归并只需这一把锁。
func (t *Tracker) shardFor(dir string) *sync.Mutex {
	return &t.shards[xxhash.Sum64String(dir)&t.mask]
}

// routeKey 决定事件归入哪个窗口：可推导目标的临时/备份名直接归入
// 目标窗口，不可推导的挂目录待定窗口，真实文件归自身。
func (t *Tracker) routeKey(name string) (dir, key string, pending bool) {
	dir, base := filepath.Split(name)
	if p, ok := matchPattern(t.opts.classify.tempPatterns, base); ok {
		if target, derivable := p.Target(base); derivable {
			return dir, dir + target, false
		}
		return dir, dir + pendingBase, true
	}
	if p, ok := matchPattern(t.opts.classify.backupPatterns, base); ok {
		if target, derivable := p.Target(base); derivable {
			return dir, dir + target, false
		}
		return dir, dir + pendingBase, true
	}
	return dir, name, false
}

// Feed 录入一个事件。Close 之后返回 [ErrClosed]。
func (t *Tracker) Feed(ev fsnotify.Event) error {
	if t.closed.Load() {
		return ErrClosed
	}
	dir, key, pending := t.routeKey(ev.Name)
	mu := t.shardFor(dir)
	mu.Lock()
	defer mu.Unlock()
	// Close 先置位再扫尾，锁下复查避免事件落进已冲刷的窗口
	if t.closed.Load() {
		return ErrClosed
	}

	w := t.window(key, dir)
	w.events = append(w.events, seqEvent{ev: ev, seq: t.seq.Add(1)})
	if !pending {
		t.absorbPending(w)
	}
	t.armTimer(w)
	return nil
}

// ActiveWindows 返回当前活动窗口数（诊断用）。
func (t *Tracker) ActiveWindows() int {
	return t.windows.Len()
}

// window 返回 key 的活动窗口，不存在或已结算则新建。
// 调用方必须持有 dir 的分片锁。
func (t *Tracker) window(key, dir string) *pathWindow {
	if w, ok := t.windows.Get(key); ok && !w.settled.Load() {
		return w
	}
	w := &pathWindow{key: key, dir: dir}
	t.windows.Set(key, w)
	return w
}

// absorbPending 把同目录的待定窗口并入 w，按到达序号归并。
// 调用方必须持有 dir 的分片锁（待定窗口与 w 同分片）。
func (t *Tracker) absorbPending(w *pathWindow) {
	pkey := w.dir + pendingBase
	if w.key == pkey {
		return
	}
	p, ok := t.windows.Peek(pkey)
	if !ok || !p.settled.CompareAndSwap(false, true) {
		return
	}
	p.stopTimer()
	t.windows.Delete(pkey)
	w.events = mergeBySeq(w.events, p.events)
}

// armTimer 重置窗口的结算计时。代数递增使已在途的旧定时器触发作废。
// 调用方必须持有所属分片锁。
func (t *Tracker) armTimer(w *pathWindow) {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.timer = time.AfterFunc(t.opts.window, func() {
		t.settle(w, gen)
	})
}

// settle 结算窗口：从缓存摘除、归类并回调。gen 与窗口当前代数不符
// 说明定时器触发与取锁之间又有事件到达（计时已被重置），本次作废。
func (t *Tracker) settle(w *pathWindow, gen uint64) {
	mu := t.shardFor(w.dir)
	mu.Lock()
	if gen != forceSettle && gen != w.gen {
		mu.Unlock()
		return
	}
	if !w.settled.CompareAndSwap(false, true) {
		mu.Unlock()
		return
	}
	w.stopTimer()
	// 指针比对：同 key 可能已有接替的新窗口，不能误删
	if cur, ok := t.windows.Peek(w.key); ok && cur == w {
		t.windows.Delete(w.key)
	}
	events := make([]fsnotify.Event, len(w.events))
	for i, se := range w.events {
		events[i] = se.ev
	}
	mu.Unlock()

	t.emit(events)
}

// emit 归类并回调 handler。不持有任何锁。
func (t *Tracker) emit(events []fsnotify.Event) {
	op, ok := classify(events, t.opts.classify)
	if !ok && !t.opts.emitUnknown {
		return
	}
	if id, err := t.opts.idFunc(); err == nil {
		op.ID = id
	} else if t.opts.logger != nil {
		// ID 缺失不阻断投递，操作本身比标识更重要
		t.opts.logger.Warn(context.Background(), "operation id allocation failed",
			slog.String("path", op.Path), xlog.Err(err))
	}
	t.handler(op)
}

// onEvict 容量淘汰回调。上游缓存在内部锁内调用，这里只做无锁投递；
// 队列满则退回给窗口自己的定时器结算。
func (t *Tracker) onEvict(_ string, w *pathWindow) {
	if w.settled.Load() {
		return
	}
	select {
	case t.evictCh <- w:
	default:
	}
}

// drainEvicted 提前结算被淘汰的窗口：淘汰后窗口收不到后续事件，
// 等满静默期没有意义。
func (t *Tracker) drainEvicted() {
	defer t.drainWG.Done()
	for w := range t.evictCh {
		t.settle(w, forceSettle)
	}
}

// Close 冲刷所有剩余窗口并释放资源。幂等，重复调用返回 nil。
// 冲刷产生的 Operation 仍会回调 handler。
func (t *Tracker) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		// 空临界区屏障：越过在途 Feed，此后锁下复查都会看到 closed
		for i := range t.shards {
			t.shards[i].Lock()
			t.shards[i].Unlock() //nolint:staticcheck // SA2001 屏障即目的
		}
		for _, key := range t.windows.Keys() {
			if w, ok := t.windows.Peek(key); ok {
				t.settle(w, forceSettle)
			}
		}
		t.windows.Close()
		close(t.evictCh)
		t.drainWG.Wait()
	})
	return nil
}

// mergeBySeq 归并两段各自按到达序号有序的事件。
func mergeBySeq(a, b []seqEvent) []seqEvent {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]seqEvent, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].seq <= b[j].seq {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
