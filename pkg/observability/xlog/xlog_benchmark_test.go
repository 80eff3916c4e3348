package xlog_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/omeyang/basekit/pkg/observability/xlog"
)

// =============================================================================
// 性能测试
// =============================================================================

func BenchmarkLogger_Info(b *testing.B) {
	logger, cleanup, err := xlog.New().
		SetOutput(io.Discard). // 避免 I/O 开销影响测量
		SetLevel(xlog.LevelInfo).
		Build()
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		if err := cleanup(); err != nil {
			b.Errorf("cleanup error: %v", err)
		}
	})

	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "benchmark message")
	}
}

func BenchmarkLogger_Info_Disabled(b *testing.B) {
	logger, cleanup, err := xlog.New().
		SetOutput(io.Discard).
		SetLevel(xlog.LevelError).
		Build()
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		if err := cleanup(); err != nil {
			b.Errorf("cleanup error: %v", err)
		}
	})

	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "should be skipped")
	}
}

func BenchmarkLogger_Info_AddSource(b *testing.B) {
	logger, cleanup, err := xlog.New().
		SetOutput(io.Discard).
		SetLevel(xlog.LevelInfo).
		SetAddSource(true).
		Build()
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = cleanup() })

	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "benchmark message with source")
	}
}

func BenchmarkLogger_With(b *testing.B) {
	logger, cleanup, err := xlog.New().Build()
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		if err := cleanup(); err != nil {
			b.Errorf("cleanup error: %v", err)
		}
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = logger.With(slog.String("key", "value"))
	}
}

func BenchmarkLogger_Stack(b *testing.B) {
	logger, cleanup, err := xlog.New().
		SetOutput(io.Discard).
		Build()
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = cleanup() })

	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		logger.Stack(ctx, "stack benchmark")
	}
}
