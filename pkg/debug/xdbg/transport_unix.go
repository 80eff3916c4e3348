//go:build !windows

package xdbg

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"
)

// unixTransport 基于 Unix Domain Socket 的传输层。
type unixTransport struct {
	socketPath string
	socketPerm fs.FileMode

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

func newUnixTransport(socketPath string, socketPerm fs.FileMode) *unixTransport {
	return &unixTransport{socketPath: socketPath, socketPerm: socketPerm}
}

// Listen 创建并监听 socket 文件。
// 残留的 socket 文件（上次异常退出）会被清理后重建；
// 路径上存在非 socket 文件时拒绝，不覆盖未知文件。
func (t *unixTransport) Listen(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrNotRunning
	}

	info, err := os.Stat(t.socketPath)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSocket == 0 {
			return fmt.Errorf("%w: %q exists and is not a socket", ErrInvalidSocketPath, t.socketPath)
		}
		if err := os.Remove(t.socketPath); err != nil {
			return fmt.Errorf("xdbg: remove stale socket: %w", err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("xdbg: stat socket path: %w", err)
	}

	listener, err := net.Listen("unix", t.socketPath)
	if err != nil {
		return fmt.Errorf("xdbg: listen unix: %w", err)
	}
	if err := os.Chmod(t.socketPath, t.socketPerm); err != nil {
		_ = listener.Close()
		return fmt.Errorf("xdbg: chmod socket: %w", err)
	}

	t.listener = listener
	return nil
}

// Accept 接受连接并读取对端凭证。
func (t *unixTransport) Accept() (net.Conn, *PeerIdentity, error) {
	t.mu.Lock()
	listener := t.listener
	t.mu.Unlock()

	if listener == nil {
		return nil, nil, ErrNotRunning
	}

	// Accept 阻塞，不能持锁。Close 会让它以错误返回。
	conn, err := listener.Accept()
	if err != nil {
		return nil, nil, fmt.Errorf("xdbg: accept: %w", err)
	}

	identity, err := peerIdentity(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("xdbg: peer identity: %w", err)
	}
	return conn, identity, nil
}

// Close 关闭监听并删除 socket 文件。幂等。
func (t *unixTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	var err error
	if t.listener != nil {
		err = t.listener.Close()
		t.listener = nil
	}
	if removeErr := os.Remove(t.socketPath); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = removeErr
	}
	return err
}

// Addr 返回 socket 路径。
func (t *unixTransport) Addr() string {
	return t.socketPath
}

// 编译期接口检查。
var _ Transport = (*unixTransport)(nil)
