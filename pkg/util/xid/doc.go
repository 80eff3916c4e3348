// Package xid 基于 Sonyflake 提供短小、粗略按时间有序的进程内唯一 ID。
//
// # 设计理念
//
// xid 是对 sony/sonyflake 的薄封装，提供项目内统一的 ID 生成入口：
//   - 包级函数共享全局生成器，首次使用时自动初始化
//   - NewGenerator 创建独立实例，适合依赖注入与测试隔离
//   - base36 字符串形式 12-13 字符，比 UUID（36 字符）短且可排序
//
// # ID 结构
//
// Sonyflake ID 的默认位布局：
//
//	39 bits - 时间戳（10ms 为单位，自纪元起约可用 174 年）
//	 8 bits - 序列号（同一时间单位内最多 256 个 ID）
//	16 bits - 机器 ID
//
// 同一 10ms 窗口内最多 256 个 ID，持续吞吐约 25k IDs/s/节点；
// 对吞吐敏感的场景应分散到多实例或改用随机 ID。
//
// # 快速开始
//
//	// 生产推荐：容忍短暂时钟回拨
//	id, err := xid.NewStringWithRetry(ctx)
//	if err != nil {
//	    return err
//	}
//
//	// crash-fast 场景的一行式
//	id := xid.MustNewString()
//
// 自定义配置在应用启动时通过 Init 完成：
//
//	if err := xid.Init(
//	    xid.WithStartTime(serviceEpoch),
//	    xid.WithMachineID(myMachineID),
//	); err != nil {
//	    log.Fatal(err)
//	}
//
// # 机器 ID
//
// 默认策略按优先级回退：XID_MACHINE_ID 环境变量 → 主机名哈希 →
// 私有 IPv4 低 16 位。哈希与 IP 策略只提供概率唯一（生日悖论：
// 100 节点约 7% 碰撞概率），多实例部署建议显式分配 XID_MACHINE_ID。
//
// # 时钟回拨
//
// Sonyflake v2 在内部消化短暂回拨；WithRetry 系列方法额外在
// maxClockDrift 窗口（默认 500ms）内重试，窗口耗尽返回
// [ErrClockBackwardTimeout]。时间分量溢出（[ErrOverTimeLimit]）不可恢复，
// 立即返回。
//
// 所有公开函数并发安全。
package xid
