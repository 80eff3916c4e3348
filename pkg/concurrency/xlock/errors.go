package xlock

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName 锁名已被注册。
	// Register 重名时返回此错误，注册表不发生任何变更。
	ErrDuplicateName = errors.New("xlock: duplicate lock name")

	// ErrOrderConflict 顺序号已被其他锁占用。
	// Register 顺序冲突时返回此错误，注册表不发生任何变更。
	ErrOrderConflict = errors.New("xlock: lock order already in use")

	// ErrNotFound 锁名未注册。
	// Get/Acquire 引用未注册的名字时返回此错误；
	// Acquire 在获取任何锁之前完成全部解析，失败不持有任何锁。
	ErrNotFound = errors.New("xlock: lock not found")

	// ErrAcquireTimeout 获取锁超过超时预算。
	// 可恢复错误：调用方可稍后重试。多锁获取共享一个预算，
	// 序列中任何一把锁耗尽预算都会返回此错误并回滚已获取的锁。
	ErrAcquireTimeout = errors.New("xlock: acquire timeout")

	// ErrWouldBlock 非阻塞获取遇到已被持有的锁。
	// 仅在 NonBlocking 模式下返回。与 [ErrAcquireTimeout] 区分，
	// 便于调用方按获取模式分支处理。
	ErrWouldBlock = errors.New("xlock: lock would block")

	// ErrOrderViolation 锁顺序违规的哨兵目标。
	// 实际返回值是 [*OrderViolationError]，同时支持
	// errors.Is(err, ErrOrderViolation) 与 errors.As 两种匹配。
	ErrOrderViolation = errors.New("xlock: lock order violation")

	// ErrNotLocked 释放未被持有的锁。
	// Mutex.Unlock 在锁空闲时返回此错误。
	ErrNotLocked = errors.New("xlock: mutex not locked")

	// ErrEmptyName 锁名为空字符串。
	ErrEmptyName = errors.New("xlock: empty lock name")

	// ErrNilContext context 为 nil。
	ErrNilContext = errors.New("xlock: nil context")

	// ErrNilFunc Do 收到 nil 回调。
	ErrNilFunc = errors.New("xlock: nil func")

	// ErrInvalidTimeout 超时配置不合法（必须为正）。
	ErrInvalidTimeout = errors.New("xlock: invalid timeout")

	// ErrInvalidThreshold 长持有告警阈值不合法（必须为正）。
	ErrInvalidThreshold = errors.New("xlock: invalid hold warn threshold")

	// ErrInvalidInterval 监控扫描间隔不合法（必须为正）。
	ErrInvalidInterval = errors.New("xlock: invalid monitor interval")

	// ErrNilManager Monitor 收到 nil 管理器。
	ErrNilManager = errors.New("xlock: nil manager")
)

// OrderViolationError 表示按序获取约定被破坏：尝试获取的锁顺序号
// 不严格大于调用方当前持有的最大顺序号。
//
// 这是编程错误而非运行时波动，调用方不应重试，而应修正获取顺序。
// Manager 会同时通过日志高声报告（若配置了 Logger）。
type OrderViolationError struct {
	// Name 违规获取的锁名。
	Name string
	// Order 违规获取的锁顺序号。
	Order int
	// MaxHeldOrder 调用方当前持有的最大顺序号。
	MaxHeldOrder int
	// HeldNames 调用方当前持有的锁名（按获取顺序）。
	HeldNames []string
}

func (e *OrderViolationError) Error() string {
	return fmt.Sprintf("xlock: order violation: acquiring %q (order %d) while holding max order %d (held: %v)",
		e.Name, e.Order, e.MaxHeldOrder, e.HeldNames)
}

// Is 使 errors.Is(err, ErrOrderViolation) 成立。
func (e *OrderViolationError) Is(target error) bool {
	return target == ErrOrderViolation
}
