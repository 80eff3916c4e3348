package xctx

import "context"

type contextFieldSetter struct {
	value string
	set   func(context.Context, string) (context.Context, error)
}

// 设计决策: 仅注入非空字段（"跳过空值"语义），不支持"显式清空"。
// context 值本身不可变，清空语义需要调用方自行构建新的 context 链；
// 中间件链做部分覆盖时，父 context 已有的字段保留，由入口层设置基础值、
// 后续层只补充缺失字段。
func applyOptionalFields(ctx context.Context, fields []contextFieldSetter) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		var err error
		ctx, err = field.set(ctx, field.value)
		// setter 目前仅对 nil ctx 返回错误，nil 已在上方拦截；
		// 保留分支以兼容未来 setter 增加校验。
		if err != nil {
			return nil, err
		}
	}
	return ctx, nil
}
