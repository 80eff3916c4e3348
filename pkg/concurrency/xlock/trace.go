package xlock

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// tracerName 追踪器名称
	tracerName = "xlock"
)

// Span 操作名称
const (
	spanNameAcquire = "xlock.Acquire"
)

// Span 属性名称（Metrics 也复用这些常量，确保 trace 与 metrics 键名一致）
const (
	attrLockName    = "xlock.name"
	attrLockNames   = "xlock.names"
	attrCount       = "xlock.count"
	attrAcquired    = "xlock.acquired"
	attrFailReason  = "xlock.fail_reason"
	attrNonBlocking = "xlock.non_blocking"
	attrTimeoutMS   = "xlock.timeout_ms"
	attrHolder      = "xlock.holder"
)

// getTracer 获取 tracer 实例。
// 配置了 TracerProvider 则使用它，否则使用全局默认（通常为 noop）。
func getTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName, trace.WithInstrumentationVersion(instrumentationVersion))
}

// startSpan 创建新的 span。
func startSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// setSpanError 设置 span 错误状态。
func setSpanError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// setSpanOK 设置 span 成功状态。
func setSpanOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// acquireSpanAttributes 构建 Acquire 操作的 span 属性。
func acquireSpanAttributes(names []string, ao *acquireOptions) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.StringSlice(attrLockNames, names),
		attribute.Int(attrCount, len(names)),
		attribute.Bool(attrNonBlocking, ao.nonBlocking),
	}
	if ao.timeoutSet {
		attrs = append(attrs, attribute.Int64(attrTimeoutMS, ao.timeout.Milliseconds()))
	}
	if ao.holder != "" {
		attrs = append(attrs, attribute.String(attrHolder, ao.holder))
	}
	return attrs
}
