package xdbg

import (
	"context"
	"fmt"
	"strings"
)

// registerBuiltin 注册与宿主组件无关的基础命令。
func (s *Server) registerBuiltin() {
	s.registry.register(NewCommandFunc("ping", "连通性测试",
		func(ctx context.Context, _ []string) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return "pong", nil
		}))
	s.registry.register(newHelpCommand(s))
}

// helpCommand help 命令：列出全部命令，或显示单条命令的说明。
type helpCommand struct {
	server *Server
}

func newHelpCommand(s *Server) *helpCommand {
	return &helpCommand{server: s}
}

func (c *helpCommand) Name() string { return "help" }

func (c *helpCommand) Help() string { return "显示帮助；help <command> 查看单条命令" }

func (c *helpCommand) Execute(_ context.Context, args []string) (string, error) {
	if len(args) > 0 {
		cmd := c.server.registry.get(args[0])
		if cmd == nil {
			return "", fmt.Errorf("%w: %q", ErrCommandNotFound, args[0])
		}
		return fmt.Sprintf("%s - %s", cmd.Name(), cmd.Help()), nil
	}

	var sb strings.Builder
	sb.WriteString("可用命令:\n")
	for _, cmd := range c.server.registry.all() {
		fmt.Fprintf(&sb, "  %-12s %s\n", cmd.Name(), cmd.Help())
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
