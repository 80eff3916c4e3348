//go:build linux

package xdbg

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// peerIdentity 通过 SO_PEERCRED 读取对端进程凭证（Linux）。
// 用 SyscallConn 取 fd，避免 File() 把连接切回阻塞模式的副作用。
func peerIdentity(conn net.Conn) (*PeerIdentity, error) {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("not a unix connection")
	}

	rawConn, err := unixConn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("syscall conn: %w", err)
	}

	var cred *unix.Ucred
	var credErr error
	err = rawConn.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	if credErr != nil {
		return nil, fmt.Errorf("SO_PEERCRED: %w", credErr)
	}

	return &PeerIdentity{UID: cred.Uid, GID: cred.Gid, PID: cred.Pid}, nil
}
