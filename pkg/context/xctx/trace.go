package xctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// =============================================================================
// ID 格式常量（遵循 W3C Trace Context 规范）
// =============================================================================

const (
	// TraceIDSize W3C 规范: 128-bit (16 bytes) -> 32 hex chars
	TraceIDSize = 16

	// SpanIDSize W3C 规范: 64-bit (8 bytes) -> 16 hex chars
	SpanIDSize = 8
)

// =============================================================================
// Trace 日志属性 Key 常量
// =============================================================================

// Trace Key 常量，遵循 OpenTelemetry 语义约定（下划线分隔）
const (
	KeyTraceID    = "trace_id"
	KeySpanID     = "span_id"
	KeyRequestID  = "request_id"
	KeyTraceFlags = "trace_flags"

	// traceFieldCount 追踪字段数量（用于 slog 属性预分配）
	traceFieldCount = 4
)

// =============================================================================
// Trace Context Key 定义
// =============================================================================

const (
	keyTraceID    = contextKey("xctx:trace_id")
	keySpanID     = contextKey("xctx:span_id")
	keyRequestID  = contextKey("xctx:request_id")
	keyTraceFlags = contextKey("xctx:trace_flags")
)

// =============================================================================
// TraceID 操作
// =============================================================================

// WithTraceID 将 trace ID 注入 context。
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyTraceID, traceID), nil
}

// TraceID 从 context 提取 trace ID，不存在返回空字符串。
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyTraceID).(string); ok {
		return v
	}
	return ""
}

// =============================================================================
// SpanID 操作
// =============================================================================

// WithSpanID 将 span ID 注入 context。
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithSpanID(ctx context.Context, spanID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keySpanID, spanID), nil
}

// SpanID 从 context 提取 span ID，不存在返回空字符串。
func SpanID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keySpanID).(string); ok {
		return v
	}
	return ""
}

// =============================================================================
// RequestID 操作
// =============================================================================

// WithRequestID 将 request ID 注入 context。
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithRequestID(ctx context.Context, requestID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyRequestID, requestID), nil
}

// RequestID 从 context 提取 request ID，不存在返回空字符串。
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyRequestID).(string); ok {
		return v
	}
	return ""
}

// =============================================================================
// TraceFlags 操作（W3C Trace Context trace-flags 字段）
// =============================================================================

// WithTraceFlags 将 trace flags 注入 context。
//
// trace-flags 传递采样决策等信息，格式为 2 位十六进制字符串
// （"01" 已采样，"00" 未采样）。如果 ctx 为 nil，返回 ErrNilContext。
func WithTraceFlags(ctx context.Context, flags string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyTraceFlags, flags), nil
}

// TraceFlags 从 context 提取 trace flags，不存在返回空字符串。
//
// 未设置时返回空字符串，调用方自行决定默认采样行为。
func TraceFlags(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyTraceFlags).(string); ok {
		return v
	}
	return ""
}

// =============================================================================
// Require 函数：强制获取模式
// 追踪信息通常由 EnsureXxx 自动生成，Require 用于必须确认字段存在的场景。
// 如需批量校验，使用 Trace.Validate()。
// =============================================================================

// RequireTraceID 从 context 获取 trace ID，不存在则返回 ErrMissingTraceID。
// 如果 ctx 为 nil，返回 ErrNilContext。
func RequireTraceID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := TraceID(ctx)
	if v == "" {
		return "", ErrMissingTraceID
	}
	return v, nil
}

// RequireSpanID 从 context 获取 span ID，不存在则返回 ErrMissingSpanID。
// 如果 ctx 为 nil，返回 ErrNilContext。
func RequireSpanID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := SpanID(ctx)
	if v == "" {
		return "", ErrMissingSpanID
	}
	return v, nil
}

// RequireRequestID 从 context 获取 request ID，不存在则返回 ErrMissingRequestID。
// 如果 ctx 为 nil，返回 ErrNilContext。
func RequireRequestID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := RequestID(ctx)
	if v == "" {
		return "", ErrMissingRequestID
	}
	return v, nil
}

// =============================================================================
// ID 生成函数（遵循 W3C Trace Context 规范）
// 参考: https://www.w3.org/TR/trace-context/
// =============================================================================

// isAllZeros 检查字节切片是否全为零。
// W3C Trace Context 规范禁止全零的 trace-id 和 span-id。
func isAllZeros(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// GenerateTraceID 生成符合 W3C Trace Context 规范的 TraceID。
//
// 格式: 32 位小写十六进制字符串 (128-bit)，如 "0af7651916cd43dd8448eb211c80319c"。
// 使用 crypto/rand 保证随机性；规范禁止全零 ID，出现时重新生成。
//
// Panic 策略：熵源不可用（内核级故障）时 panic 而非静默降级——
// 系统无法提供安全随机数时继续运行存在安全隐患，应立即终止。
func GenerateTraceID() string {
	var buf [TraceIDSize]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("xctx: crypto/rand.Read failed: " + err.Error())
		}
		if !isAllZeros(buf[:]) {
			return hex.EncodeToString(buf[:])
		}
		// 全零概率 2^-128，重新生成
	}
}

// GenerateSpanID 生成符合 W3C Trace Context 规范的 SpanID。
//
// 格式: 16 位小写十六进制字符串 (64-bit)，如 "b7ad6b7169203331"。
// Panic 策略与 GenerateTraceID 相同。
func GenerateSpanID() string {
	var buf [SpanIDSize]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("xctx: crypto/rand.Read failed: " + err.Error())
		}
		if !isAllZeros(buf[:]) {
			return hex.EncodeToString(buf[:])
		}
		// 全零概率 2^-64，重新生成
	}
}

// GenerateRequestID 生成 RequestID。
//
// RequestID 不在 W3C 标准中，采用与 TraceID 相同的 32 位十六进制格式保持一致性。
func GenerateRequestID() string {
	return GenerateTraceID()
}

// =============================================================================
// Ensure 函数：自动补全模式（有则沿用，无则生成）
// 用于请求入口，使当前服务成为链路追踪的起点。
// =============================================================================

// EnsureTraceID 确保 context 中存在 TraceID。
//
// 已有值原样沿用（不验证/不纠正），缺失时生成并注入。
// 如果 ctx 为 nil，返回 ErrNilContext。
func EnsureTraceID(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if TraceID(ctx) != "" {
		return ctx, nil
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureSpanID 确保 context 中存在 SpanID。
//
// 已有值原样沿用，缺失时生成并注入。如果 ctx 为 nil，返回 ErrNilContext。
func EnsureSpanID(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if SpanID(ctx) != "" {
		return ctx, nil
	}
	return WithSpanID(ctx, GenerateSpanID())
}

// EnsureRequestID 确保 context 中存在 RequestID。
//
// 已有值原样沿用，缺失时生成并注入。如果 ctx 为 nil，返回 ErrNilContext。
func EnsureRequestID(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if RequestID(ctx) != "" {
		return ctx, nil
	}
	return WithRequestID(ctx, GenerateRequestID())
}

// EnsureTrace 确保 context 中存在所有追踪字段。
//
// 批量检查并补全 TraceID、SpanID、RequestID，已存在的字段原样保留。
// 如果 ctx 为 nil，返回 ErrNilContext。
//
// 注意：不处理 TraceFlags。采样决策应从上游请求传播而非本地生成，
// 需要时用 WithTraceFlags 显式设置。
func EnsureTrace(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	// 一次性检查所有字段，避免重复 context.Value 查找
	hasTraceID := TraceID(ctx) != ""
	hasSpanID := SpanID(ctx) != ""
	hasRequestID := RequestID(ctx) != ""

	if hasTraceID && hasSpanID && hasRequestID {
		return ctx, nil
	}

	// 设计决策: 构建仅含缺失字段的 Trace 后经 WithTrace 批量注入，
	// applyOptionalFields 跳过空值字段，不会覆盖已存在的值。
	var trace Trace
	if !hasTraceID {
		trace.TraceID = GenerateTraceID()
	}
	if !hasSpanID {
		trace.SpanID = GenerateSpanID()
	}
	if !hasRequestID {
		trace.RequestID = GenerateRequestID()
	}

	return WithTrace(ctx, trace)
}

// =============================================================================
// Trace 结构体（批量操作模式）
// =============================================================================

// Trace 追踪信息结构体，用于批量传递追踪信息。
//
// TraceFlags 是 W3C Trace Context 的采样标志（如 "01" 表示已采样）。
type Trace struct {
	TraceID    string
	SpanID     string
	RequestID  string
	TraceFlags string
}

// GetTrace 从 context 批量获取所有追踪信息。
//
// 字段可能为空字符串，使用 IsComplete() 检查是否全部存在。
func GetTrace(ctx context.Context) Trace {
	return Trace{
		TraceID:    TraceID(ctx),
		SpanID:     SpanID(ctx),
		RequestID:  RequestID(ctx),
		TraceFlags: TraceFlags(ctx),
	}
}

// Validate 校验必填字段是否完整，缺失时返回对应的哨兵错误。
//
// fail-fast：按 TraceID → SpanID → RequestID 顺序返回第一个缺失字段的错误。
// TraceFlags 不参与校验（可选的采样决策字段，由上游传播）。
func (t Trace) Validate() error {
	if t.TraceID == "" {
		return ErrMissingTraceID
	}
	if t.SpanID == "" {
		return ErrMissingSpanID
	}
	if t.RequestID == "" {
		return ErrMissingRequestID
	}
	return nil
}

// IsComplete 检查追踪信息是否完整。
//
// TraceID、SpanID、RequestID 三个核心字段都非空时返回 true，
// TraceFlags 不参与完整性检查。
func (t Trace) IsComplete() bool {
	return t.TraceID != "" && t.SpanID != "" && t.RequestID != ""
}

// WithTrace 将 Trace 结构体中的非空字段批量注入 context。
//
// 空字符串字段被跳过，适用于从上游请求头解析追踪信息后一次性注入。
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithTrace(ctx context.Context, tr Trace) (context.Context, error) {
	return applyOptionalFields(ctx, []contextFieldSetter{
		{value: tr.TraceID, set: WithTraceID},
		{value: tr.SpanID, set: WithSpanID},
		{value: tr.RequestID, set: WithRequestID},
		{value: tr.TraceFlags, set: WithTraceFlags},
	})
}
