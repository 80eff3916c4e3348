package xlru

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxSize 缓存条目数上限。
const maxSize = 1 << 24 // 16,777,216

// Option 缓存可选配置。nil 被静默跳过。
type Option[K comparable, V any] func(*options[K, V])

type options[K comparable, V any] struct {
	ttl       time.Duration
	onEvicted func(key K, value V)
}

// WithTTL 设置条目过期时间，从 Set 时刻起算，覆盖写会刷新。
// 0（默认值）表示永不过期；负值使 New 返回 ErrInvalidTTL。
func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(o *options[K, V]) {
		o.ttl = ttl
	}
}

// WithOnEvicted 设置条目被淘汰时的回调。
//
// 设计决策: 回调在底层库的互斥锁内同步执行（容量淘汰、Delete、Clear、
// Close 都会触发）。回调内严禁调用 Cache 自身的任何方法（会死锁），
// 也不应执行阻塞操作；复杂处理应把事件送进带缓冲的 channel 异步消化。
func WithOnEvicted[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(o *options[K, V]) {
		o.onEvicted = fn
	}
}

// Cache 带可选 TTL 的泛型 LRU 缓存。
// 零值不可用，必须经 [New] 创建。所有方法并发安全。
// Close 之后读操作返回零值/false，写操作静默忽略。
type Cache[K comparable, V any] struct {
	lru       *expirable.LRU[K, V]
	closed    atomic.Bool
	closeOnce sync.Once
}

// New 创建容量为 size 的 LRU 缓存。
// size 必须大于 0 且不超过 16,777,216，否则返回
// ErrInvalidSize / ErrSizeExceedsMax；WithTTL 传入负值返回 ErrInvalidTTL。
func New[K comparable, V any](size int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if size > maxSize {
		return nil, ErrSizeExceedsMax
	}

	o := &options[K, V]{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.ttl < 0 {
		return nil, ErrInvalidTTL
	}

	return &Cache[K, V]{
		lru: expirable.NewLRU(size, o.onEvicted, o.ttl),
	}, nil
}

// Get 返回键对应的值并刷新其 LRU 位置。
// 键不存在、已过期或缓存已关闭时返回零值和 false。
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	if c.closed.Load() {
		return value, false
	}
	return c.lru.Get(key)
}

// Set 写入键值。返回值透传底层 Add 的淘汰语义：
// true 表示本次写入挤掉了最久未访问的条目。
// 覆盖已有键会刷新 TTL 且不触发淘汰。缓存已关闭时静默忽略。
func (c *Cache[K, V]) Set(key K, value V) bool {
	if c.closed.Load() {
		return false
	}
	return c.lru.Add(key, value)
}

// Delete 删除键，返回键是否存在。会触发 OnEvicted 回调。
// 缓存已关闭时返回 false。
func (c *Cache[K, V]) Delete(key K) bool {
	if c.closed.Load() {
		return false
	}
	return c.lru.Remove(key)
}

// Clear 清空缓存。每个条目都会触发 OnEvicted 回调。
func (c *Cache[K, V]) Clear() {
	if c.closed.Load() {
		return
	}
	c.lru.Purge()
}

// Len 返回当前条目数，可能包含已过期但尚未被后台清理的条目。
func (c *Cache[K, V]) Len() int {
	if c.closed.Load() {
		return 0
	}
	return c.lru.Len()
}

// Contains 检查键是否存在且未过期，不更新 LRU 顺序。
//
// 设计决策: 内部走 Peek 而非底层 Contains——底层 Contains 只做 map
// 查找不校验 TTL，会把已过期条目误报为存在，与 Get 的语义不一致。
func (c *Cache[K, V]) Contains(key K) bool {
	if c.closed.Load() {
		return false
	}
	_, ok := c.lru.Peek(key)
	return ok
}

// Peek 返回键对应的值但不更新 LRU 顺序。
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	if c.closed.Load() {
		return value, false
	}
	return c.lru.Peek(key)
}

// Keys 返回全部键，从最旧到最新排列。可能包含已过期未清理的键。
func (c *Cache[K, V]) Keys() []K {
	if c.closed.Load() {
		return nil
	}
	return c.lru.Keys()
}

// Close 清空缓存并停止底层 TTL 清理 goroutine，幂等。
//
// closed 标记与底层操作之间有微小的 TOCTOU 窗口：Load 返回 false 之后
// 另一 goroutine 可能恰好 Close。底层 LRU 在 Purge 后仍是合法对象，
// 该窗口只造成关闭瞬间的短暂可见性，不会 panic 或损坏数据。
func (c *Cache[K, V]) Close() {
	c.closed.Store(true)
	c.closeOnce.Do(func() {
		c.lru.Purge()
		stopCleanupGoroutine(c.lru)
	})
}

// stopCleanupGoroutine 停止 expirable.LRU 的后台清理 goroutine。
// 返回 false 表示降级为无操作（上游结构变化或通道已关闭）。
//
// 设计决策: golang-lru/v2@v2.0.7 在 TTL > 0 时启动清理 goroutine，但把
// Close 方法整个注释掉了，公开 API 无法停止它。这里用 reflect + unsafe
// 找到内部的 done 通道（chan struct{}）并关闭，让 goroutine 退出。
// 升级 golang-lru 时先确认上游是否补上了公开 Close；补上了就删掉这段。
func stopCleanupGoroutine(lru any) (stopped bool) {
	defer func() {
		// done 已关闭时 close 会 panic，降级返回 false
		if r := recover(); r != nil {
			stopped = false
		}
	}()

	v := reflect.ValueOf(lru)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}

	doneField := v.Elem().FieldByName("done")
	if !doneField.IsValid() || doneField.IsNil() {
		return false
	}
	if doneField.Type() != reflect.TypeOf(make(chan struct{})) {
		return false
	}

	doneCh := *(*chan struct{})(unsafe.Pointer(doneField.UnsafeAddr())) //nolint:gosec // 有意访问未导出字段
	close(doneCh)
	return true
}
