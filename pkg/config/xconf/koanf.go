package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// 确保 *koanfConfig 实现 Config 接口
var _ Config = (*koanfConfig)(nil)

// koanfConfig 是 Config 的 koanf 实现。
//
// 设计决策: 快照语义——koanf 实例一经构建不再修改，Reload 解析成功后
// 通过 atomic.Pointer 整体替换。读路径（Client/Unmarshal）无锁，
// reloadMu 只序列化并发 Reload，防止交错重载互相覆盖。
type koanfConfig struct {
	snapshot atomic.Pointer[koanf.Koanf]
	path     string
	format   Format
	opts     *Options
	reloadMu sync.Mutex
	isBytes  bool
}

// New 从文件创建配置实例，根据扩展名检测格式（.yaml/.yml/.json）。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	options := applyOptions(opts)
	k, err := loadFile(path, format, options.Delim)
	if err != nil {
		return nil, err
	}

	c := &koanfConfig{
		path:    path,
		format:  format,
		opts:    options,
		isBytes: false,
	}
	c.snapshot.Store(k)
	return c, nil
}

// NewFromBytes 从字节数据创建配置实例，格式需显式指定。
//
// 空数据创建空配置（与 New 读空文件的行为一致），
// Unmarshal 得到目标结构体的零值。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	options := applyOptions(opts)
	k := koanf.New(options.Delim)
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, err
		}
	}

	c := &koanfConfig{
		format:  format,
		opts:    options,
		isBytes: true,
	}
	c.snapshot.Store(k)
	return c, nil
}

// Client 返回当前快照的 koanf 实例（无锁）。
func (c *koanfConfig) Client() *koanf.Koanf {
	return c.snapshot.Load()
}

// Unmarshal 将指定路径的配置反序列化到目标结构体。
func (c *koanfConfig) Unmarshal(path string, target any) error {
	k := c.snapshot.Load()
	if err := k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{
		Tag: c.opts.Tag,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// MustUnmarshal 与 Unmarshal 相同，失败时 panic。
func (c *koanfConfig) MustUnmarshal(path string, target any) {
	if err := c.Unmarshal(path, target); err != nil {
		panic(err)
	}
}

// Reload 重新加载配置文件。解析成功前旧快照保持可用。
func (c *koanfConfig) Reload() error {
	if c.isBytes {
		return ErrNotFromFile
	}

	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	k, err := loadFile(c.path, c.format, c.opts.Delim)
	if err != nil {
		return err
	}
	c.snapshot.Store(k)
	return nil
}

// Path 返回配置文件路径。
func (c *koanfConfig) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *koanfConfig) Format() Format {
	return c.format
}

// =============================================================================
// 内部辅助函数
// =============================================================================

func applyOptions(opts []Option) *Options {
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

// loadFile 读取并解析文件，返回全新的 koanf 实例。
func loadFile(path string, format Format, delim string) (*koanf.Koanf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k := koanf.New(delim)
	if err := loadData(k, data, format); err != nil {
		return nil, err
	}
	return k, nil
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// loadData 解析数据到 koanf 实例。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
