package xconf

import "errors"

// 配置加载、解析与监视相关错误。
var (
	// ErrEmptyPath 配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 配置读取失败（文件不存在、权限不足等）。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 配置解析失败（格式非法、半写状态等）。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 配置反序列化失败。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrNotFromFile 配置不是从文件创建的，无法 Reload/Watch。
	ErrNotFromFile = errors.New("xconf: config not created from a file")

	// ErrNilCallback Watch 的回调函数为 nil。
	ErrNilCallback = errors.New("xconf: nil watch callback")

	// ErrInvalidDebounce 防抖时长非法（必须为正）。
	ErrInvalidDebounce = errors.New("xconf: invalid debounce duration")

	// ErrInvalidRetry 重载重试参数非法。
	ErrInvalidRetry = errors.New("xconf: invalid reload retry config")

	// ErrWatchFailed 监视器创建失败或运行期的 fsnotify 错误。
	ErrWatchFailed = errors.New("xconf: watch error")
)
