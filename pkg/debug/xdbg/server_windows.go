//go:build windows

package xdbg

import "context"

// Server 调试服务器（Windows 桩）。
// 调试服务依赖 Unix Domain Socket 与对端凭证，Windows 上不提供。
type Server struct{}

// New 在 Windows 上始终返回 [ErrUnsupported]。
func New(_ ...Option) (*Server, error) {
	return nil, ErrUnsupported
}

// Start 在 Windows 上始终返回 [ErrUnsupported]。
func (s *Server) Start(_ context.Context) error {
	return ErrUnsupported
}

// Stop 无操作。
func (s *Server) Stop() error { return nil }

// Running 始终返回 false。
func (s *Server) Running() bool { return false }

// Addr 返回空字符串。
func (s *Server) Addr() string { return "" }

// RegisterCommand 无操作。
func (s *Server) RegisterCommand(_ Command) {}
