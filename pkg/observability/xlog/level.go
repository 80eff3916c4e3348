package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别，数值语义复用 slog.Level，可直接互相转换
type Level slog.Level

// 级别常量，与 slog 的数值对齐（Debug=-4, Info=0, Warn=4, Error=8）
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// String 返回级别名称
//
// 四个标准级别输出 DEBUG/INFO/WARN/ERROR；
// 其余数值沿用 slog 的偏移表示（如 Level(2) 输出 "INFO+2"）。
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return slog.Level(l).String()
	}
}

// MarshalText 实现 encoding.TextMarshaler，级别可直接写入 YAML/JSON 配置
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，配置文件中的级别字符串可直接反序列化
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel 解析级别字符串
//
// 大小写不敏感，首尾空白自动忽略；warning 是 warn 的别名。
// 解析失败返回 LevelInfo 和错误，调用方忽略错误时行为依然安全。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("xlog: unknown level %q", s)
	}
}
