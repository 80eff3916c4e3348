//go:build !windows

package xdbg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/basekit/pkg/observability/xlog"
)

// session 一条连接上的请求-响应循环。
type session struct {
	id       string
	conn     net.Conn
	identity *IdentityInfo
	server   *Server

	mu     sync.Mutex
	broken bool // 写失败后置位，阻止继续往坏连接上写
}

func newSession(conn net.Conn, identity *IdentityInfo, server *Server) *session {
	return &session{
		id:       uuid.NewString(),
		conn:     conn,
		identity: identity,
		server:   server,
	}
}

// run 驱动会话直到对端断开、空闲超时或服务停止。
func (s *session) run(ctx context.Context) {
	defer func() { _ = s.conn.Close() }()

	s.log().Info(ctx, "debug session started",
		slog.String("session_id", s.id),
		slog.String("peer", s.identity.String()))
	start := time.Now()
	defer func() {
		s.log().Info(ctx, "debug session ended",
			slog.String("session_id", s.id),
			slog.Duration("duration", time.Since(start)))
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.mu.Lock()
		broken := s.broken
		s.mu.Unlock()
		if broken {
			return
		}

		req, ok := s.readRequest(ctx)
		if !ok {
			return
		}
		s.handle(ctx, req)
	}
}

// readRequest 读一个请求帧，带空闲超时。
// 返回 false 表示会话应当结束（断开、超时或坏帧）。
func (s *session) readRequest(ctx context.Context) (*Request, bool) {
	if d := s.server.opts.idleTimeout; d > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(d)); err != nil {
			return nil, false
		}
	}

	req, err := s.server.codec.DecodeRequest(s.conn)
	if err != nil {
		if errors.Is(err, ErrConnectionClosed) {
			return nil, false
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			s.log().Info(ctx, "debug session idle timeout", slog.String("session_id", s.id))
			return nil, false
		}
		// 坏帧：回报错误后断开，不在脏流上继续解析。
		s.send(ctx, errorResponse(err))
		return nil, false
	}

	// 命令执行期间的超时由命令 ctx 控制，清掉读 deadline。
	if err := s.conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, false
	}
	return req, true
}

// handle 执行一条命令并写回结果。
func (s *session) handle(ctx context.Context, req *Request) {
	start := time.Now()

	cmd := s.server.registry.get(req.Command)
	if cmd == nil {
		err := fmt.Errorf("%w: %q", ErrCommandNotFound, req.Command)
		s.logCommand(ctx, req, time.Since(start), err)
		s.send(ctx, errorResponse(err))
		return
	}

	cmdCtx, cancel := context.WithTimeout(ctx, s.server.opts.commandTimeout)
	output, err := execute(cmdCtx, cmd, req.Args)
	cancel()
	if err != nil && cmdCtx.Err() == context.DeadlineExceeded {
		err = ErrCommandTimeout
	}

	s.logCommand(ctx, req, time.Since(start), err)
	if err != nil {
		s.send(ctx, errorResponse(err))
		return
	}
	s.send(ctx, successResponse(output, s.server.opts.maxOutputSize))
}

// execute 带 panic 隔离地执行命令。
// 诊断通道不能成为故障放大器：命令的 panic 变成错误响应，
// 不允许传播到宿主进程。
func execute(ctx context.Context, cmd Command, args []string) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("xdbg: command panicked: %v", r)
		}
	}()
	return cmd.Execute(ctx, args)
}

// send 编码并写回响应，带写超时。写失败标记会话为 broken。
func (s *session) send(ctx context.Context, resp *Response) {
	data, err := s.server.codec.EncodeResponse(resp)
	if err != nil {
		// successResponse 已保证截断后可编码，走到这里只剩
		// marshal 本身的缺陷，回退到极简错误帧。
		data, err = s.server.codec.EncodeResponse(errorResponse(err))
		if err != nil {
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return
	}

	if d := s.server.opts.writeTimeout; d > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(d)); err != nil {
			s.broken = true
			return
		}
	}
	if _, err := s.conn.Write(data); err != nil {
		s.log().Warn(ctx, "debug response write failed",
			slog.String("session_id", s.id), xlog.Err(err))
		s.broken = true
		return
	}
	if s.server.opts.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Time{})
	}
}

// logCommand 记录一次命令执行。
func (s *session) logCommand(ctx context.Context, req *Request, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("session_id", s.id),
		slog.String("peer", s.identity.String()),
		slog.String("command", req.Command),
		slog.Any("args", req.Args),
		slog.Duration("duration", duration),
	}
	if err != nil {
		s.log().Warn(ctx, "debug command failed", append(attrs, xlog.Err(err))...)
		return
	}
	s.log().Info(ctx, "debug command executed", attrs...)
}

// log 返回服务日志器；未配置时用 nop，会话代码不必到处判空。
func (s *session) log() logSink {
	if s.server.opts.logger != nil {
		return s.server.opts.logger
	}
	return nopLog{}
}

// logSink 是会话所需的最小日志面。
type logSink interface {
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
}

type nopLog struct{}

func (nopLog) Info(context.Context, string, ...slog.Attr) {}
func (nopLog) Warn(context.Context, string, ...slog.Attr) {}
