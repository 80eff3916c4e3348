//go:build !windows

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/basekit/pkg/config/xconf"
)

// exitError 表示需要非零退出码但已完成输出的场景。
// 命令内部已完成所有输出，main 只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 表示参数错误，统一映射到退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// createCommands 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createStatusCommand(),
		createExecCommand(),
		// 快捷命令（等价于 exec <command>）
		createShortcutCommand("ping", "连通性测试", ""),
		createShortcutCommand("locks", "查看锁注册表状态", ""),
		createShortcutCommand("deadlocks", "检测潜在死锁（长持有启发式）", ""),
		createShortcutCommand("loglevel", "查看/设置日志级别", "[debug|info|warn|error]"),
	}
}

// createShortcutCommand 创建快捷命令（等价于 exec <command>）。
func createShortcutCommand(name, usage, argsUsage string) *cli.Command {
	cmd := &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClientFromFlags(cmd)
			if err != nil {
				return err
			}
			args := append([]string{name}, cmd.Args().Slice()...)
			return cmdExec(ctx, client, args)
		},
	}
	if argsUsage != "" {
		cmd.ArgsUsage = argsUsage
	}
	return cmd
}

// createExecCommand 创建 exec 子命令。
func createExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Aliases:   []string{"x"},
		Usage:     "执行调试命令",
		ArgsUsage: "<command> [args...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClientFromFlags(cmd)
			if err != nil {
				return err
			}
			return cmdExec(ctx, client, cmd.Args().Slice())
		},
	}
}

// createStatusCommand 创建 status 子命令。
func createStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "查看服务状态",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClientFromFlags(cmd)
			if err != nil {
				return err
			}
			return cmdStatus(ctx, client)
		},
	}
}

// cmdExec 执行调试命令并打印结果。
func cmdExec(ctx context.Context, client *Client, args []string) error {
	if len(args) == 0 {
		return &usageError{msg: "exec 命令需要指定要执行的调试命令"}
	}

	resp, err := client.Execute(ctx, args[0], args[1:])
	if err != nil {
		return err
	}
	if !resp.OK {
		return errors.New(resp.Error)
	}

	if resp.Output != "" {
		fmt.Println(resp.Output)
	}
	if resp.Truncated {
		fmt.Fprintf(os.Stderr, "\n[警告: 输出已截断，原始大小: %d 字节]\n", resp.OriginalSize)
	}
	return nil
}

// cmdStatus 查看服务状态。
// 设计决策: 离线时返回非零退出码（通过 exitError），
// 使脚本和探针能正确检测服务状态。
func cmdStatus(ctx context.Context, client *Client) error {
	if err := client.Ping(ctx); err != nil {
		fmt.Printf("状态: 离线\n")
		fmt.Printf("Socket: %s\n", client.socketPath)
		fmt.Printf("详情: %v\n", err)
		return &exitError{code: 1}
	}

	fmt.Printf("状态: 在线\n")
	fmt.Printf("Socket: %s\n", client.socketPath)
	return nil
}

// ctlConfig 配置文件结构。timeout 为 time.ParseDuration 格式的字符串。
type ctlConfig struct {
	Socket  string `koanf:"socket"`
	Timeout string `koanf:"timeout"`
}

// newClientFromFlags 按优先级解析连接参数：命令行显式指定 >
// 配置文件 > 内置默认值，然后创建客户端。
func newClientFromFlags(cmd *cli.Command) (*Client, error) {
	socketPath := cmd.String("socket")
	timeout := cmd.Duration("timeout")

	if path := cmd.String("config"); path != "" {
		cfg, err := loadConfig(path)
		if err != nil {
			return nil, err
		}
		if !cmd.IsSet("socket") && cfg.Socket != "" {
			socketPath = cfg.Socket
		}
		if !cmd.IsSet("timeout") && cfg.Timeout != "" {
			d, err := time.ParseDuration(cfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("配置文件 timeout 不合法: %w", err)
			}
			timeout = d
		}
	}

	return NewClient(socketPath, timeout), nil
}

// loadConfig 加载配置文件（按扩展名识别 JSON/YAML）。
func loadConfig(path string) (*ctlConfig, error) {
	cfg, err := xconf.New(path)
	if err != nil {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}

	var out ctlConfig
	if err := cfg.Unmarshal("", &out); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &out, nil
}

// setupSignalHandler 设置信号处理。
// 设计决策: 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
// 当命令阻塞时，用户可通过再次 Ctrl+C 强制退出。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel() // 第一次信号: 优雅取消

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130) // 第二次信号: 强制退出
	}()
}
