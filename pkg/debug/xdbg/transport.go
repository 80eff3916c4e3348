package xdbg

import (
	"context"
	"net"
)

// Transport 调试服务的传输层抽象。
// 内置实现是 Unix Socket；测试可通过 [WithTransport] 注入替身。
type Transport interface {
	// Listen 开始监听。
	Listen(ctx context.Context) error

	// Accept 接受一个连接，并尽力返回对端身份。
	// 平台无法取得对端凭证时 identity 可能退化（见 peercred_*.go）。
	Accept() (conn net.Conn, identity *PeerIdentity, err error)

	// Close 关闭监听并释放资源。关闭是终态。
	Close() error

	// Addr 返回监听地址的人类可读形式。
	Addr() string
}

// PeerIdentity 连接对端的进程凭证。
type PeerIdentity struct {
	// UID 对端进程的用户 ID。
	UID uint32 `json:"uid"`

	// GID 对端进程的组 ID。
	GID uint32 `json:"gid"`

	// PID 对端进程 ID（平台不支持时为 0）。
	PID int32 `json:"pid"`
}
