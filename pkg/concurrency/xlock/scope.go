package xlock

import (
	"context"
	"sync/atomic"
)

// stackKey 是获取栈在 context 中的键，按 Manager 实例区分：
// 同一 ctx 可以携带多个 Manager 的栈而互不干扰。
type stackKey struct{ m *manager }

// stack 是随 context 传播的获取栈节点。
// 不可变：每次成功获取都产生新的合并切片，父 ctx 的栈不受影响。
type stack struct {
	recs []*record
}

// stackFrom 读取 ctx 中属于本 Manager 的获取栈。
func (m *manager) stackFrom(ctx context.Context) []*record {
	s, _ := ctx.Value(stackKey{m}).(*stack)
	if s == nil {
		return nil
	}
	return s.recs
}

// withStack 返回携带新获取栈的派生 ctx。
func (m *manager) withStack(ctx context.Context, recs []*record) context.Context {
	return context.WithValue(ctx, stackKey{m}, &stack{recs: recs})
}

// Scope 表示一次成功的多锁获取。
//
// Context 返回的派生 ctx 携带获取栈，必须作为临界区内嵌套
// Acquire/Do 的入参，重入才能被识别。Release 幂等，只释放本次
// 新获取的锁（重入跳过的锁归外层作用域所有）。
type Scope struct {
	mgr      *manager
	ctx      context.Context
	holder   string
	acquired []*record // 本次新获取，按获取顺序
	released atomic.Bool
}

// Context 返回携带获取栈的派生 context。
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Holder 返回获取时设置的持有者标签。
func (s *Scope) Holder() string {
	return s.holder
}

// Names 返回本次新获取的锁名（按获取顺序，不含重入跳过的锁）。
func (s *Scope) Names() []string {
	names := make([]string, len(s.acquired))
	for i, rec := range s.acquired {
		names[i] = rec.name
	}
	return names
}

// Release 按 LIFO 释放本次新获取的锁。
// 幂等：重复调用是无操作。单把锁的释放失败只记录日志，
// 不影响其余锁的释放。
func (s *Scope) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	// WithoutCancel：调用方 ctx 已取消时，释放日志与指标仍需上报。
	s.mgr.releaseLIFO(context.WithoutCancel(s.ctx), s.acquired)
}
