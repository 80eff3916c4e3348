package xlog

import (
	"log/slog"
	"time"

	"github.com/omeyang/basekit/pkg/context/xctx"
)

// =============================================================================
// 常用属性 Key 常量
//
// 统一日志字段名，避免同一含义在不同调用点写出不同 key。
// 命名参考 OpenTelemetry Semantic Conventions。
// =============================================================================

const (
	// KeyError 错误字段
	KeyError = "error"

	// KeyStack 堆栈字段
	KeyStack = "stack"

	// KeyDuration 耗时字段
	KeyDuration = "duration"

	// KeyCount 计数字段
	KeyCount = "count"

	// KeyRequestID 请求 ID 字段，直接引用 xctx 的定义保证跨包一致
	KeyRequestID = xctx.KeyRequestID

	// KeyComponent 组件名字段
	KeyComponent = "component"

	// KeyOperation 操作名字段
	KeyOperation = "operation"
)

// =============================================================================
// 便捷属性构造函数
// =============================================================================

// Err 构造错误属性，key 固定为 "error"
//
// err 为 nil 时返回零值属性，slog 输出时会将其忽略，
// 调用方不必在传参前自行判空：
//
//	logger.Error(ctx, "operation failed", xlog.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 构造耗时属性，输出人类可读格式（如 "5s"）
//
//	start := time.Now()
//	// ... 操作 ...
//	logger.Info(ctx, "operation completed", xlog.Duration(time.Since(start)))
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 构造组件名属性，标识日志来源模块
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 构造操作名属性，标识当前执行的动作
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Count 构造计数属性
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}
