//go:build !windows

package xdbg

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/basekit/pkg/observability/xlog"
)

// serverState 服务器状态。转换全部通过 CAS：
//
//	created ──Start()──→ running ──Stop()──→ stopped
//	created ──Stop()──→ stopped
//
// stopped 是终态。
type serverState int32

const (
	stateCreated serverState = iota
	stateRunning
	stateStopped
)

// Server 调试服务器。
//
// 返回具体类型而非接口：平台差异由构建标签在编译期解决，
// 测试通过 [WithTransport] 注入传输层即可。
type Server struct {
	opts     *options
	registry *registry
	codec    *Codec

	state     atomic.Int32
	transport Transport
	sessions  atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New 创建调试服务器。配置不合法时返回错误。
func New(opts ...Option) (*Server, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	s := &Server{
		opts:     o,
		registry: newRegistry(),
		codec:    NewCodec(),
	}
	s.registerBuiltin()
	s.registerDiagnostics()
	return s, nil
}

// Start 开始监听并接受连接。
// 重复调用返回 [ErrAlreadyRunning]；Stop 之后返回 [ErrStopped]。
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.state.CompareAndSwap(int32(stateCreated), int32(stateRunning)) {
		if serverState(s.state.Load()) == stateStopped {
			return ErrStopped
		}
		return ErrAlreadyRunning
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.transport = s.opts.transport
	if s.transport == nil {
		s.transport = newUnixTransport(s.opts.socketPath, s.opts.socketPerm)
	}
	if err := s.transport.Listen(s.ctx); err != nil {
		s.cancel()
		s.transport = nil
		s.state.Store(int32(stateCreated))
		return fmt.Errorf("xdbg: start: %w", err)
	}

	s.logInfo("debug server listening", slog.String("addr", s.transport.Addr()))

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop 停止服务：关闭监听，等待在途会话退出（有时限）。幂等。
func (s *Server) Stop() error {
	for {
		state := serverState(s.state.Load())
		if state == stateStopped {
			return nil
		}
		if s.state.CompareAndSwap(int32(state), int32(stateStopped)) {
			if state == stateCreated {
				return nil
			}
			break
		}
	}

	s.cancel()
	err := s.transport.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.opts.shutdownTimeout):
		s.logWarn("shutdown timeout, sessions may still be draining",
			slog.Duration("timeout", s.opts.shutdownTimeout))
	}

	s.logInfo("debug server stopped")
	return err
}

// Running 返回服务是否在运行。
func (s *Server) Running() bool {
	return serverState(s.state.Load()) == stateRunning
}

// Addr 返回监听地址；未启动时返回配置的 socket 路径。
func (s *Server) Addr() string {
	if t := s.transport; t != nil {
		return t.Addr()
	}
	return s.opts.socketPath
}

// RegisterCommand 注册自定义命令。同名覆盖。
func (s *Server) RegisterCommand(cmd Command) {
	if cmd != nil {
		s.registry.register(cmd)
	}
}

// acceptLoop 接受连接。瞬时 Accept 错误按指数退避重试，
// 监听关闭（Stop）后退出。
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	backoff := acceptBackoffInitial
	for {
		if s.ctx.Err() != nil || serverState(s.state.Load()) != stateRunning {
			return
		}

		conn, identity, err := s.transport.Accept()
		if err != nil {
			if serverState(s.state.Load()) != stateRunning {
				return
			}
			s.logWarn("accept failed", xlog.Err(err))
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, acceptBackoffMax)
			continue
		}
		backoff = acceptBackoffInitial

		if int(s.sessions.Add(1)) > s.opts.maxSessions {
			s.sessions.Add(-1)
			s.reject(conn)
			continue
		}

		sess := newSession(conn, resolveIdentity(identity), s)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.sessions.Add(-1)
			sess.run(s.ctx)
		}()
	}
}

// Accept 错误退避区间。
const (
	acceptBackoffInitial = 5 * time.Millisecond
	acceptBackoffMax     = time.Second
)

// reject 拒绝超限连接：尽力写回错误响应后关闭。
func (s *Server) reject(conn net.Conn) {
	if s.opts.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.opts.writeTimeout))
	}
	if data, err := s.codec.EncodeResponse(errorResponse(ErrTooManySessions)); err == nil {
		_, _ = conn.Write(data)
	}
	_ = conn.Close()
}

// 日志辅助：logger 未配置时静默。
func (s *Server) logInfo(msg string, attrs ...slog.Attr) {
	if s.opts.logger != nil {
		s.opts.logger.Info(context.Background(), msg, attrs...)
	}
}

func (s *Server) logWarn(msg string, attrs ...slog.Attr) {
	if s.opts.logger != nil {
		s.opts.logger.Warn(context.Background(), msg, attrs...)
	}
}
