package xconf

import "github.com/knadh/koanf/v2"

// Format 配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（.yaml/.yml）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式（.json）。
	FormatJSON Format = "json"
)

// Config 配置实例。
// 只提供增值能力（并发安全的热重载、类型安全的反序列化），
// 其余读取操作直接使用 Client() 返回的 koanf 实例。
type Config interface {
	// Client 返回当前配置快照的 koanf 实例。
	// 返回的指针在 Reload 之后仍可安全使用，但指向旧快照；
	// 需要最新值时重新调用 Client()，不要长期缓存。
	Client() *koanf.Koanf

	// Unmarshal 将指定路径的配置反序列化到目标结构体。
	// path 为空字符串时反序列化整个配置。
	Unmarshal(path string, target any) error

	// MustUnmarshal 与 Unmarshal 相同，失败时 panic。
	// 适用于启动期的必要配置加载。
	MustUnmarshal(path string, target any)

	// Reload 重新读取并解析配置文件，解析成功后原子替换快照。
	// 任一步骤失败时保留旧快照。并发调用被序列化。
	// 从字节数据创建的 Config 返回 ErrNotFromFile。
	Reload() error

	// Path 返回配置文件路径；从字节数据创建的 Config 返回空字符串。
	Path() string

	// Format 返回配置格式。
	Format() Format
}
