// Package xlru 提供带可选 TTL 的泛型 LRU 缓存。
//
// 基于 github.com/hashicorp/golang-lru/v2/expirable 封装：
//
//	cache, err := xlru.New[string, int](1024,
//	    xlru.WithTTL[string, int](time.Minute),
//	)
//
// # 语义
//
//   - 容量淘汰：缓存满时挤掉最久未访问的条目
//   - TTL：从 Set 时刻起算，覆盖写刷新；Get 不刷新 TTL；0 表示永不过期
//   - Get/Peek 过滤已过期条目；Len/Keys/Contains 之外的 Contains 走 Peek
//     保持一致，Len/Keys 可能短暂包含已过期未清理的条目（底层库行为）
//   - 所有方法并发安全；底层是 sync.Mutex（Get 要改 LRU 顺序，RWMutex 无益）
//
// # 淘汰回调
//
// WithOnEvicted 的回调在底层锁内同步执行。回调内不得调用 Cache 自身
// 方法（死锁），不应阻塞；需要复杂处理时把事件发进带缓冲的 channel。
//
// # 资源释放
//
// TTL > 0 时底层库带一个清理 goroutine，上游没有提供停止入口。
// Close 通过 reflect+unsafe 关闭其内部通道来回收；用完必须 Close，
// 否则 goroutine 泄漏。Close 幂等，Close 后读返回零值、写被忽略。
//
// 本包不做接口抽象——底层库稳定，需要换实现时在业务层包一层即可。
package xlru
