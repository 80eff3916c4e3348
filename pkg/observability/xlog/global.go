package xlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// =============================================================================
// 全局 Logger
//
// 面向脚手架、一次性小工具这类不值得做依赖注入的场景。
// 服务端代码应显式持有 Logger 实例。
// =============================================================================

// globalLogger 当前全局 Logger，读路径走 atomic
var globalLogger atomic.Pointer[LoggerWithLevel]

// globalMu 串行化 globalOnce 的执行与重置（ResetDefault 会覆盖 once）
var globalMu sync.Mutex

// globalOnce 默认 Logger 只构建一次
var globalOnce sync.Once

// defaultLogger 惰性构建默认 Logger
//
// 设计决策: once.Do 在持锁状态下执行。ResetDefault 会整体覆盖 globalOnce，
// 若与 once.Do 并发，覆盖 sync.Once 内部状态会直接 fatal，锁是必须的。
// 初始化完成后 Default() 走 atomic.Load 快路径，不再进入本函数，锁开销可忽略。
func defaultLogger() LoggerWithLevel {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalOnce.Do(func() {
		// 默认配置：stderr、Info 级别、text 格式、追踪注入开启
		logger, _, err := New().Build()
		if err != nil {
			// 设计决策: 默认参数按理不会构建失败；万一失败则降级到最小可用
			// logger 而不是 panic，库代码不能替宿主进程决定生死。
			fmt.Fprintf(os.Stderr, "xlog: failed to build default logger: %v, using fallback\n", err)
			fallbackHandler := slog.NewTextHandler(os.Stderr, nil)
			var fallback LoggerWithLevel = &xlogger{
				handler:    fallbackHandler,
				levelVar:   new(slog.LevelVar),
				errorCount: new(atomic.Uint64),
			}
			globalLogger.Store(&fallback)
			return
		}
		globalLogger.Store(&logger)
	})
	return *globalLogger.Load()
}

// Default 返回全局默认 Logger
//
// 首次调用时惰性构建（stderr、Info 级别、text 格式）。
// 已初始化后只有一次 atomic.Load 的开销。
func Default() LoggerWithLevel {
	if l := globalLogger.Load(); l != nil {
		return *l
	}
	return defaultLogger()
}

// SetDefault 替换全局默认 Logger
//
// 常见于测试或需要自定义全局配置的入口代码。
// 传入 nil 会被忽略，全局函数因此永远不会碰到 nil logger；
// 要回到初始状态请用 ResetDefault。
func SetDefault(l LoggerWithLevel) {
	if l == nil {
		return
	}
	globalLogger.Store(&l)
}

// ResetDefault 把全局 Logger 重置为未初始化状态（仅测试使用）
//
// 重置后下一次 Default() 会重新构建默认 Logger。
func ResetDefault() {
	globalMu.Lock()
	globalLogger.Store(nil)
	globalOnce = sync.Once{}
	globalMu.Unlock()
}

// =============================================================================
// 便利函数：最小集合，一律要求 ctx
// =============================================================================

// globalLog 全局函数的公共出口，处理多出的一层栈帧
// 全局函数比实例方法多一跳，源码定位需要额外 skip 1 帧
func globalLog(l LoggerWithLevel, ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if xl, ok := l.(*xlogger); ok {
		xl.logWithSkip(ctx, level, msg, attrs, 1)
		return
	}
	// 非 xlogger 实现（用户通过 SetDefault 注入的自定义 logger）走接口方法
	switch level {
	case slog.LevelDebug:
		l.Debug(ctx, msg, attrs...)
	case slog.LevelInfo:
		l.Info(ctx, msg, attrs...)
	case slog.LevelWarn:
		l.Warn(ctx, msg, attrs...)
	default:
		// LevelError 与自定义级别都落到 Error，宁可级别不准也不丢日志
		l.Error(ctx, msg, attrs...)
	}
}

// Debug 使用全局 Logger 记录 Debug 级别日志
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	globalLog(Default(), ctx, slog.LevelDebug, msg, attrs)
}

// Info 使用全局 Logger 记录 Info 级别日志
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	globalLog(Default(), ctx, slog.LevelInfo, msg, attrs)
}

// Warn 使用全局 Logger 记录 Warn 级别日志
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	globalLog(Default(), ctx, slog.LevelWarn, msg, attrs)
}

// Error 使用全局 Logger 记录 Error 级别日志
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	globalLog(Default(), ctx, slog.LevelError, msg, attrs)
}

// Stack 使用全局 Logger 记录带堆栈的错误日志
func Stack(ctx context.Context, msg string, attrs ...slog.Attr) {
	l := Default()
	if xl, ok := l.(*xlogger); ok {
		xl.stackWithSkip(ctx, msg, attrs, 1)
		return
	}
	l.Stack(ctx, msg, attrs...)
}
