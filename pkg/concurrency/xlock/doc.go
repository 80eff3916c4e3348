// Package xlock 提供命名、有序、可重入的进程内锁管理器。
//
// 每把锁在注册时绑定唯一的名字和唯一的顺序号（order）。多锁获取
// 必须按 order 升序进行，违反顺序立即返回 [*OrderViolationError]，
// 从根本上消除 ABBA 死锁。
//
// # 特性
//
//   - 命名注册表：Register 绑定 name + order，重复注册返回
//     [ErrDuplicateName] / [ErrOrderConflict]
//   - 原子多锁获取：Acquire 按 order 排序后依次获取，任一失败即
//     按 LIFO 回滚已获取的锁
//   - 可重入：同一逻辑调用方（以 context 传播）再次获取已持有的锁
//     直接跳过，且不会被内层作用域释放
//   - 超时预算：阻塞获取共享一个单调时钟预算（默认 10s），预算
//     耗尽返回 [ErrAcquireTimeout]；NonBlocking 模式立即返回
//     [ErrWouldBlock]
//   - 诊断：Status 返回每把锁的持有者快照；DetectPotentialDeadlocks
//     报告持有超过阈值（默认 30s）的锁
//   - 观测：可选 OTel metrics/trace，可选 xlog 结构化日志
//
// # 重入模型
//
// 设计决策: 重入状态不依赖 goroutine 身份，而是随 context 传播
// （Scope.Context / Do 回调的 ctx 携带获取栈）。goroutine id 仅作为
// 诊断信息记录在持有者快照中。跨 goroutine 传递 Scope context 时，
// 重入语义跟随 context 而非线程。
//
// # 用法
//
//	m := xlock.Default()
//	err := m.Do(ctx, []string{"config.reload", "watcher.state"},
//		func(ctx context.Context) error {
//			// 临界区；嵌套的 m.Do(ctx, ...) 自动识别重入
//			return nil
//		})
//
// 死锁预防依赖注册时的全局顺序约定，参见 [RegisterWellKnown] 的
// 顺序分段规划。本包不做等待图检测，DetectPotentialDeadlocks 只是
// 长持有启发式。
package xlock
