package xlog

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/basekit/pkg/context/xctx"
)

// ErrNilHandler 当 NewTraceHandler 的 base handler 为 nil 时返回
var ErrNilHandler = errors.New("xlog: base handler is nil")

// maxTraceAttrs 最大注入属性数量（trace_id + span_id + trace_flags + request_id）
const maxTraceAttrs = 4

// TraceHandler 自动从 context 提取追踪信息并注入日志
//
// 装饰模式实现，包装底层 slog.Handler，在 Handle() 时自动添加
// trace_id、span_id、trace_flags、request_id 字段。
//
// 字段来源优先级：
//  1. context 中存在有效的 OpenTelemetry SpanContext 时，
//     trace_id/span_id/trace_flags 取自 span（与导出的 trace 数据对齐）
//  2. 否则回退到 xctx 注入的追踪字段
//
// request_id 不属于 OTel 语义，始终取自 xctx。
// Best-effort 策略：context 中缺少字段不影响日志记录。
type TraceHandler struct {
	base slog.Handler
}

// NewTraceHandler 创建 TraceHandler
//
// 设计决策: 调用 WithGroup 后，注入属性（trace_id 等）会被归入 group 下。
// 这是 slog handler 架构的固有限制——group 作用于 handler 处理的所有属性。
// 保持追踪字段始终在顶层需要重写 handler 的 group 管理（复杂度高、易出错），
// 且多数场景不会对 logger 调用 WithGroup。如需顶层 trace_id，避免对带注入的
// logger 调用 WithGroup。
func NewTraceHandler(base slog.Handler) (*TraceHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &TraceHandler{base: base}, nil
}

// Enabled 委托给底层 handler
func (h *TraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 在调用底层 handler 前，从 context 提取追踪信息
//
// 重要：根据 slog 契约，必须 Clone record 后再修改，避免影响其他 handler。
// ctx 为 nil 时安全退化为无注入（xctx 函数内部处理了 nil ctx）。
// 性能优化：使用栈数组 [maxTraceAttrs]slog.Attr 避免热路径堆分配。
func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [maxTraceAttrs]slog.Attr
	attrs := appendTraceAttrs(buf[:0], ctx)

	// 如果有属性需要添加，必须 Clone record
	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}

	return h.base.Handle(ctx, r)
}

// appendTraceAttrs 按优先级提取追踪属性：OTel SpanContext 优先，xctx 兜底。
func appendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return xctx.AppendTraceAttrs(attrs, ctx)
	}

	attrs = append(attrs,
		slog.String(xctx.KeyTraceID, sc.TraceID().String()),
		slog.String(xctx.KeySpanID, sc.SpanID().String()),
		slog.String(xctx.KeyTraceFlags, sc.TraceFlags().String()),
	)
	if v := xctx.RequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(xctx.KeyRequestID, v))
	}
	return attrs
}

// WithAttrs 返回带额外属性的新 handler
func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{
		base: h.base.WithAttrs(attrs),
	}
}

// WithGroup 返回带分组的新 handler
func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{
		base: h.base.WithGroup(name),
	}
}
