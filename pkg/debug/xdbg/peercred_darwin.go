//go:build darwin

package xdbg

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// peerIdentity 通过 LOCAL_PEERCRED / LOCAL_PEERPID 读取对端凭证（macOS）。
func peerIdentity(conn net.Conn) (*PeerIdentity, error) {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("not a unix connection")
	}

	rawConn, err := unixConn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("syscall conn: %w", err)
	}

	var cred *unix.Xucred
	var pid int
	var credErr, pidErr error
	err = rawConn.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptXucred(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERCRED)
		pid, pidErr = unix.GetsockoptInt(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERPID)
	})
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	if credErr != nil {
		return nil, fmt.Errorf("LOCAL_PEERCRED: %w", credErr)
	}

	identity := &PeerIdentity{UID: cred.Uid}
	if cred.Ngroups > 0 {
		identity.GID = cred.Groups[0]
	}
	// PID 取不到不算失败，保持 0 即可。
	if pidErr == nil {
		identity.PID = int32(pid)
	}
	return identity, nil
}
