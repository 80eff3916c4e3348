//go:build !windows

// bkdbgctl 是 xdbg 调试服务的命令行客户端。
//
// 用法:
//
//	bkdbgctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-s, --socket   Unix Socket 路径 (默认: /var/run/basekit-debug.sock)
//	-t, --timeout  命令超时时间 (默认: 30s)
//	-c, --config   配置文件路径（JSON/YAML，为命令行未指定的选项提供默认值）
//
// 命令:
//
//	ping           连通性测试
//	locks          查看锁注册表状态
//	deadlocks      检测潜在死锁（长持有启发式）
//	loglevel       查看/设置日志级别
//	exec <cmd>     执行任意调试命令
//	status         查看服务状态
//	help           显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功（status 命令: 服务在线）
//	1: 命令执行失败或服务离线（status 命令）
//	2: 参数错误（缺少必需参数、未知命令等）
//
// 示例:
//
//	bkdbgctl locks                         # 查看锁注册表
//	bkdbgctl loglevel debug                # 调整日志级别
//	bkdbgctl -s /tmp/app.sock deadlocks    # 使用自定义 Socket 路径
//	bkdbgctl -c /etc/myapp/ctl.yaml status # 从配置文件读默认值
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/omeyang/basekit/pkg/debug/xdbg"
	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认超时时间。
const defaultTimeout = 30 * time.Second

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "bkdbgctl",
		Usage:   "xdbg 调试服务命令行客户端",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "socket",
				Aliases: []string{"s"},
				Usage:   "Unix Socket 路径",
				Value:   xdbg.DefaultSocketPath,
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "命令超时时间",
				Value:   defaultTimeout,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（为未显式指定的选项提供默认值）",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	if err := app.Run(ctx, os.Args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr.msg)
			return 2
		}
		// CLI 框架产生的参数错误（未知 flag、未知命令）同样映射到退出码 2。
		if _, ok := err.(cli.ExitCoder); ok {
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
