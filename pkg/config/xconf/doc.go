// Package xconf 提供统一的配置加载和解析功能，基于 koanf 实现。
//
// # 设计理念
//
// xconf 定位为最小化配置加载器，负责文件/字节数据的加载、反序列化和热重载。
// 不负责配置治理（必选字段校验、默认值注入、环境变量覆盖），
// 这些能力由上层业务按需实现。
//
// 提供两类入口：
//   - 工厂函数：New（从文件）, NewFromBytes（从字节数据）
//   - Client() 暴露底层 koanf 实例，增值功能为并发安全的 Reload
//     和类型安全的 Unmarshal
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # 并发安全
//
// 所有方法都是并发安全的：
//   - Client() / Unmarshal() 通过 atomic.Pointer 无锁读取当前快照
//   - Reload() 通过 sync.Mutex 序列化并发调用；解析成功后原子替换快照，
//     失败时保留旧快照（配置不会回退到半解析状态）
//
// Client() 返回的指针在 Reload() 后仍然有效，但指向旧配置。
// 这是设计选择（快照语义），不是并发安全问题：旧指针可以继续使用，
// 只是数据过期。推荐每次需要时调用 Client()，不要长期缓存返回的指针。
//
// # Unmarshal
//
// Unmarshal 使用 mapstructure 进行反序列化，默认允许弱类型转换
// （例如字符串 "8080" 可自动转为 int 8080）。
// 如需严格类型校验，建议在 Unmarshal 后自行验证（如使用 go-playground/validator）。
//
// MustUnmarshal 适用于程序启动时的必要配置加载，失败时 panic：
//
//	cfg.MustUnmarshal("database", &dbConfig)
//
// # 配置监视
//
// 支持文件变更监视和自动重载（基于 fsnotify）。
// 监视的是配置文件所在目录而非文件本身，因此 vim/emacs 等编辑器的
// 原子保存（写临时文件后 rename 覆盖）不会丢失事件。
// 连续事件经防抖窗口合并为一次重载；原子保存的 rename 窗口内文件可能
// 短暂缺失，重载自带固定间隔的短重试来吸收。
//
// 从 bytes 创建的 Config 不支持监视（返回 ErrNotFromFile）。
// Stop() 幂等，未启动也可调用；Stop 之后不再安排新的重载，
// 已进入执行的重载及其回调会先完成。在回调中调用 Stop() 不会死锁。
package xconf
