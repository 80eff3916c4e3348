//go:build !windows

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	retry "github.com/avast/retry-go/v5"

	"github.com/omeyang/basekit/pkg/debug/xdbg"
)

// 连接重试参数。服务可能刚启动、socket 文件尚未就绪，
// 短暂重试比直接失败对脚本调用方更友好。
const (
	dialAttempts = 3
	dialDelay    = 100 * time.Millisecond
)

// Client xdbg 客户端。每次 Execute 建立一条新连接。
type Client struct {
	socketPath string
	timeout    time.Duration
	codec      *xdbg.Codec
}

// NewClient 创建客户端。
func NewClient(socketPath string, timeout time.Duration) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
		codec:      xdbg.NewCodec(),
	}
}

// validateSocket 校验目标路径是否为 Unix Socket 文件。
func (c *Client) validateSocket() error {
	info, err := os.Lstat(c.socketPath)
	if err != nil {
		return fmt.Errorf("无法访问 Socket 路径 %s: %w", c.socketPath, err)
	}
	if info.Mode().Type()&os.ModeSocket == 0 {
		return fmt.Errorf("路径 %s 不是 Unix Socket 文件（类型: %s）", c.socketPath, info.Mode().Type())
	}
	return nil
}

// dial 带重试地建立连接。
func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var conn net.Conn
	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(dialAttempts),
		retry.Delay(dialDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() error {
		if err := c.validateSocket(); err != nil {
			return err
		}
		dialer := net.Dialer{Timeout: c.timeout}
		var err error
		conn, err = dialer.DialContext(ctx, "unix", c.socketPath)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("连接失败: %w", err)
	}
	return conn, nil
}

// Execute 执行命令并返回响应。
func (c *Client) Execute(ctx context.Context, command string, args []string) (*xdbg.Response, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("设置超时失败: %w", err)
		}
	} else if c.timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, fmt.Errorf("设置超时失败: %w", err)
		}
	}

	data, err := c.codec.EncodeRequest(&xdbg.Request{Command: command, Args: args})
	if err != nil {
		return nil, fmt.Errorf("编码请求失败: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}

	resp, err := c.codec.DecodeResponse(conn)
	if err != nil {
		return nil, fmt.Errorf("接收响应失败: %w", err)
	}
	return resp, nil
}

// Ping 测试连接。
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Execute(ctx, "ping", nil)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("ping 失败: %s", resp.Error)
	}
	return nil
}
