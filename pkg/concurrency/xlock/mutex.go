package xlock

import "context"

// Mutex 是基于容量为 1 的 channel 的互斥原语：
//   - 发送成功 = 获取锁
//   - 发送阻塞 = 锁被占用
//   - 接收 = 释放锁
//
// 与 sync.Mutex 的区别：Lock 支持 ctx 超时/取消，Unlock 返回错误
// 而非 panic，Locked 提供尽力而为的状态探测。
//
// 设计决策: Mutex 本身不可重入，与 sync.Mutex 一致。重入语义由
// Manager 的获取栈在上层实现（已持有则跳过），原语保持最小。
// 必须通过 [NewMutex] 创建，零值不可用。
type Mutex struct {
	ch chan struct{}
}

// NewMutex 创建一个未锁定的 Mutex。
func NewMutex() *Mutex {
	return &Mutex{ch: make(chan struct{}, 1)}
}

// Lock 阻塞式获取锁，支持 ctx 超时/取消。
// ctx 取消时返回 ctx.Err()。ctx 不得为 nil，否则 panic。
func (m *Mutex) Lock(ctx context.Context) error {
	if ctx == nil {
		panic("xlock: nil Context")
	}
	// 快速检查：ctx 已取消时不参与锁竞争。
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case m.ch <- struct{}{}: // 获取成功
		return nil
	case <-ctx.Done(): // 超时或取消
		return ctx.Err()
	}
}

// TryLock 非阻塞获取锁，成功返回 true。
func (m *Mutex) TryLock() bool {
	select {
	case m.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock 释放锁。
// 锁未被持有时返回 [ErrNotLocked]，不 panic。
func (m *Mutex) Unlock() error {
	select {
	case <-m.ch:
		return nil
	default:
		return ErrNotLocked
	}
}

// Locked 返回锁当前是否被持有（瞬时快照，仅供诊断）。
// 并发场景下返回值可能在读取后立即失效。
func (m *Mutex) Locked() bool {
	return len(m.ch) == 1
}
