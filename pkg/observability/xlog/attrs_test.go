package xlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantKey string
		wantVal string
		wantNil bool
	}{
		{
			name:    "with error",
			err:     errors.New("test error"),
			wantKey: KeyError,
			wantVal: "test error",
		},
		{
			name:    "nil error",
			err:     nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Err(tt.err)
			if tt.wantNil {
				if attr.Key != "" {
					t.Errorf("Err(nil) should return empty attr, got key=%q", attr.Key)
				}
				return
			}
			if attr.Key != tt.wantKey {
				t.Errorf("Err() key = %q, want %q", attr.Key, tt.wantKey)
			}
			if attr.Value.String() != tt.wantVal {
				t.Errorf("Err() value = %q, want %q", attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	d := 5 * time.Second
	attr := Duration(d)

	if attr.Key != KeyDuration {
		t.Errorf("Duration() key = %q, want %q", attr.Key, KeyDuration)
	}
	if attr.Value.String() != "5s" {
		t.Errorf("Duration() value = %q, want %q", attr.Value.String(), "5s")
	}
}

func TestComponent(t *testing.T) {
	attr := Component("lockmgr")
	if attr.Key != KeyComponent {
		t.Errorf("Component() key = %q, want %q", attr.Key, KeyComponent)
	}
	if attr.Value.String() != "lockmgr" {
		t.Errorf("Component() value = %q, want %q", attr.Value.String(), "lockmgr")
	}
}

func TestOperation(t *testing.T) {
	attr := Operation("acquire")
	if attr.Key != KeyOperation {
		t.Errorf("Operation() key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "acquire" {
		t.Errorf("Operation() value = %q, want %q", attr.Value.String(), "acquire")
	}
}

func TestCount(t *testing.T) {
	attr := Count(42)
	if attr.Key != KeyCount {
		t.Errorf("Count() key = %q, want %q", attr.Key, KeyCount)
	}
	if attr.Value.Int64() != 42 {
		t.Errorf("Count() value = %d, want %d", attr.Value.Int64(), 42)
	}
}

func TestKeyConstants(t *testing.T) {
	// 验证 key 常量的值
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"KeyError", KeyError, "error"},
		{"KeyStack", KeyStack, "stack"},
		{"KeyDuration", KeyDuration, "duration"},
		{"KeyCount", KeyCount, "count"},
		{"KeyRequestID", KeyRequestID, "request_id"},
		{"KeyComponent", KeyComponent, "component"},
		{"KeyOperation", KeyOperation, "operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.key, tt.want)
			}
		})
	}
}

// TestAttrsIntegration 测试 attrs 与 logger 的集成
func TestAttrsIntegration(t *testing.T) {
	var buf testBuffer
	logger, cleanup, err := New().
		SetOutput(&buf).
		SetFormat("json").
		SetLevel(LevelDebug).
		Build()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = cleanup() }()

	ctx := context.Background()

	testErr := errors.New("test error")
	logger.Error(ctx, "operation failed", Err(testErr))
	if !buf.contains("error") || !buf.contains("test error") {
		t.Errorf("Err() attr not in output: %s", buf.String())
	}
	buf.Reset()

	logger.Info(ctx, "starting", Component("registry"))
	if !buf.contains("component") || !buf.contains("registry") {
		t.Errorf("Component() attr not in output: %s", buf.String())
	}
}

// testBuffer 用于测试的简单写缓冲
type testBuffer struct {
	data []byte
}

func (b *testBuffer) Write(p []byte) (n int, err error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *testBuffer) String() string {
	return string(b.data)
}

func (b *testBuffer) Reset() {
	b.data = b.data[:0]
}

func (b *testBuffer) contains(s string) bool {
	return len(b.data) > 0 && strings.Contains(string(b.data), s)
}

// BenchmarkErr 测试 Err 函数的性能
func BenchmarkErr(b *testing.B) {
	err := errors.New("benchmark error")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Err(err)
	}
}

// BenchmarkErrNil 测试 Err(nil) 的性能
func BenchmarkErrNil(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Err(nil)
	}
}

// BenchmarkComponent 对比 slog.String 的直接构造
func BenchmarkComponent(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Component("lockmgr")
	}
}
