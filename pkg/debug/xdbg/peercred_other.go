//go:build !windows && !linux && !darwin

package xdbg

import (
	"fmt"
	"net"
	"os"
)

// peerIdentity 在不支持对端凭证的平台上降级为当前进程身份。
// socket 权限 0600 仍保证只有同 owner 的进程能连上来，
// 日志里的身份信息在这些平台上失去区分对端的能力。
func peerIdentity(conn net.Conn) (*PeerIdentity, error) {
	if _, ok := conn.(*net.UnixConn); !ok {
		return nil, fmt.Errorf("not a unix connection")
	}
	return &PeerIdentity{
		UID: uint32(os.Getuid()),
		GID: uint32(os.Getgid()),
		PID: int32(os.Getpid()),
	}, nil
}
