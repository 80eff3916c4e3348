package xdbg

import "context"

// Command 一条调试命令。
type Command interface {
	// Name 返回命令名。
	Name() string

	// Help 返回一行帮助说明。
	Help() string

	// Execute 执行命令。args 不含命令名。
	// 实现应尊重 ctx 的超时与取消。
	Execute(ctx context.Context, args []string) (string, error)
}

// CommandFunc 函数式命令，免去为简单命令定义类型的样板。
type CommandFunc struct {
	name    string
	help    string
	execute func(ctx context.Context, args []string) (string, error)
}

// NewCommandFunc 创建函数式命令。
func NewCommandFunc(name, help string, fn func(ctx context.Context, args []string) (string, error)) *CommandFunc {
	return &CommandFunc{name: name, help: help, execute: fn}
}

// Name 返回命令名。
func (c *CommandFunc) Name() string { return c.name }

// Help 返回帮助说明。
func (c *CommandFunc) Help() string { return c.help }

// Execute 执行命令。
func (c *CommandFunc) Execute(ctx context.Context, args []string) (string, error) {
	return c.execute(ctx, args)
}

// 编译期接口检查。
var _ Command = (*CommandFunc)(nil)
