package xlock

import (
	"sync"
	"sync/atomic"
)

// =============================================================================
// 全局 Manager
//
// 定位：整个进程共享一张锁顺序表时的便捷入口。
// 需要独立注册表或自定义观测配置时，使用 New 并显式传递。
// =============================================================================

// globalManager 全局 Manager 实例（并发安全）
var globalManager atomic.Pointer[Manager]

// globalMu 保护 globalOnce 及其 Do 执行（也用于 ResetDefault）
var globalMu sync.Mutex

// globalOnce 确保默认 Manager 只初始化一次
var globalOnce sync.Once

// defaultManager 创建默认 Manager（惰性初始化）
//
// 设计决策: 在持锁状态下执行 once.Do，确保 ResetDefault（重置
// globalOnce）与 once.Do 之间不会发生并发竞争。初始化后 Default()
// 走 atomic.Load 快速路径，不进入此函数。
func defaultManager() Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalOnce.Do(func() {
		// 默认配置不含 MeterProvider，newManager 不会失败。
		var m Manager = newManager(defaultOptions(), nil)
		// 新建的空注册表上注册预定义锁表不会失败。
		if err := RegisterWellKnown(m); err != nil {
			panic("xlock: register well-known locks on fresh manager: " + err.Error())
		}
		globalManager.Store(&m)
	})
	return *globalManager.Load()
}

// Default 返回全局默认 Manager。
//
// 懒初始化：首次调用时创建默认 Manager 并注册预定义锁表
// （仅此一次，并发安全）。后续调用直接返回同一实例。
func Default() Manager {
	if m := globalManager.Load(); m != nil {
		return *m
	}
	return defaultManager()
}

// SetDefault 替换全局默认 Manager。
//
// 用于测试或自定义观测配置的场景。传入 nil 时忽略。
// 注意：不会在传入的 Manager 上注册预定义锁表，
// 需要时调用方自行执行 [RegisterWellKnown]。
func SetDefault(m Manager) {
	if m == nil {
		return
	}
	globalManager.Store(&m)
}

// ResetDefault 重置全局 Manager 为未初始化状态（仅用于测试）。
//
// 调用后，下次 Default() 会重新创建默认 Manager 并重新注册
// 预定义锁表。
func ResetDefault() {
	globalMu.Lock()
	globalManager.Store(nil)
	globalOnce = sync.Once{}
	globalMu.Unlock()
}
