package xconf

// Options 配置加载选项。
type Options struct {
	// Delim 配置键路径的分隔符，默认 "."（如 "app.server.port"）。
	Delim string

	// Tag 反序列化使用的结构体标签名，默认 "koanf"。
	Tag string
}

// Option 配置选项函数。nil Option 被静默跳过。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Delim: ".",
		Tag:   "koanf",
	}
}

// WithDelim 设置配置键分隔符。空字符串被忽略（保留默认值）。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置反序列化的结构体标签名。空字符串被忽略（保留默认值）。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}
