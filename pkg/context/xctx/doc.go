// Package xctx 提供轻量级的请求上下文管理。
//
// 聚焦追踪信息（trace）的 context 存取能力，并为日志系统提供属性提取功能。
//
// # 核心功能
//
// 追踪信息（Trace）- 分布式追踪：
//   - trace_id     : 追踪标识（W3C 规范，128-bit）
//   - span_id      : 跨度标识（W3C 规范，64-bit）
//   - request_id   : 请求标识
//   - trace_flags  : 追踪标志（W3C 规范，采样决策；可选字段，不参与 IsComplete 检查）
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：将 value 写入 context
//	Xxx(ctx)               - 读取：从 context 读取值，缺失时返回空字符串
//	RequireXxx(ctx)        - 强制读取：值必须存在，缺失时返回错误
//	EnsureXxx(ctx)         - 确保存在：若已存在则沿用，否则自动生成
//	GenerateXxx()          - 生成：产出符合 W3C 规范的随机 ID
//	GetTrace(ctx)          - 批量读取：返回 Trace 结构体
//
// 推荐使用顺序：
//   - 读取字段：优先 Xxx(ctx)（零值安全）→ RequireXxx(ctx)（强制存在）
//   - 批量操作：优先 GetTrace(ctx) → .Validate()（错误链）或 .IsComplete()（条件判断）
//
// # 哨兵错误
//
//	ErrNilContext        - context 为 nil
//	ErrMissingTraceID    - trace_id 缺失
//	ErrMissingSpanID     - span_id 缺失
//	ErrMissingRequestID  - request_id 缺失
//
// # 校验策略
//
// xctx 是纯粹的存取层，不对字段值进行格式校验（如 trace_id 长度/hex 格式）：
//
//   - 校验策略因业务场景而异（严格校验 vs 宽松传播）
//   - 减少热路径上不必要的运行时开销
//   - 保持 API 简洁性，关注点分离
//
// EnsureXxx 系列函数的语义是"确保非空"，对已存在的值不做验证/不纠正。
// 如需格式校验，请在网关/入口层实现，内部服务可在必要时传播非标准值。
package xctx
