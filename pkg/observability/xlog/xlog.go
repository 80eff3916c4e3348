// xlog.go 定义核心接口：Logger、Leveler、LoggerWithLevel
//
// 设计理念：
//   - 所有日志方法强制传 context，追踪字段随调用链自动传播
//   - 级别可在运行时调整，不依赖进程重启
//   - 通过 Handler 装饰链注入追踪字段（OTel span 优先，xctx 兜底）
//   - Build() 同时返回 cleanup，资源释放有明确归属
//   - 方法签名只收 slog.Attr，不做隐式 key-value 配对
package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口
//
// 每个方法第一个参数都是 context.Context，这是刻意的：追踪信息只能
// 从 ctx 中来。attrs 限定为 slog.Attr，避免 any 切片的运行时配对错误。
type Logger interface {
	// Debug 记录 Debug 级别日志
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)

	// Info 记录 Info 级别日志
	Info(ctx context.Context, msg string, attrs ...slog.Attr)

	// Warn 记录 Warn 级别日志
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)

	// Error 记录 Error 级别日志
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// Stack 记录带当前 goroutine 完整调用栈的错误日志，用于问题定位
	Stack(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回附加固定属性的派生 Logger
	//
	// 设计决策: 返回 Logger 而非 LoggerWithLevel，保持接口最小。
	// 底层实现同时满足 LoggerWithLevel，需要级别控制时类型断言即可。
	// 派生 logger 与父级共享 LevelVar，动态调级对两者同时生效。
	With(attrs ...slog.Attr) Logger

	// WithGroup 返回带分组的派生 Logger，后续 With 的属性归入该分组
	//
	// 设计决策: 与 With 一致，返回最小接口 Logger。
	WithGroup(name string) Logger
}

// Leveler 级别控制接口
//
// 与 Logger 分开定义，日志接口不被级别管理方法污染。
// 是否支持动态级别由类型断言判断。
type Leveler interface {
	// SetLevel 运行时调整日志级别，立即生效
	SetLevel(level Level)

	// GetLevel 返回当前日志级别
	GetLevel() Level

	// Enabled 判断指定级别是否会输出
	// 配合 Lazy 求值：构造昂贵参数前先问一句
	Enabled(ctx context.Context, level Level) bool
}

// LoggerWithLevel 组合接口：Logger + Leveler
//
// Build() 直接返回该接口。构建出的 Logger 几乎总是需要动态调级，
// 返回组合接口省去调用方的断言样板。
type LoggerWithLevel interface {
	Logger
	Leveler
}
