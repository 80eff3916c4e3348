// Package xdbg 提供进程内诊断服务：通过 Unix Socket 暴露锁注册表
// 状态、长持有告警与日志级别的运行时查询和调整。
//
// # 概述
//
// xdbg 面向"进程还活着但行为可疑"的排查场景。应用启动时挂一个
// 调试服务，出问题时用 bkdbgctl（或任何实现协议的客户端）连上来：
//
//   - locks       查看 xlock 注册表的全部锁及其持有者
//   - deadlocks   执行一次长持有检测（潜在死锁启发式）
//   - loglevel    查看或调整 xlog 日志级别，立即生效
//   - ping/help   连通性与命令列表
//
// 可通过 [Server.RegisterCommand] 注册自定义命令。
//
// # 协议
//
// 请求与响应都是带定长头的 JSON 帧：魔数(2) + 版本(1) + 类型(1) +
// 长度(4)，payload 为 [Request] / [Response] 的 JSON 编码。
// 详见 protocol.go 与 [Codec]。
//
// # 安全设计
//
//   - 仅监听 Unix Socket，不开网络端口；文件权限默认 0600
//   - 通过 SO_PEERCRED（或平台等价物）记录调用方身份，随会话日志输出
//   - 命令执行带 panic 隔离，诊断命令的缺陷不会压垮宿主进程
//   - 会话有读写超时与并发上限，慢客户端不会占死服务
//
// 身份信息仅用于日志记录，不做命令级授权；访问控制依赖 socket
// 文件权限。Windows 平台不支持（New 返回 [ErrUnsupported]）。
//
// # 使用
//
//	srv, err := xdbg.New(
//		xdbg.WithSocketPath("/var/run/myapp-debug.sock"),
//		xdbg.WithManager(xlock.Default()),
//		xdbg.WithLeveler(logger),
//	)
//	if err != nil { ... }
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Stop()
package xdbg
