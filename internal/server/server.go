// Package server runs the controller HTTP service: one connection at a time,
// each parsed by httpwire and served to completion before the next is accepted.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/otagate/internal/httpwire"
)

// Значения по умолчанию
const (
	DefaultHeadTimeout  = 10 * time.Second
	DefaultBodyTimeout  = 5 * time.Minute
	DefaultPollInterval = time.Second
)

// Syncer is called between connections to keep the clock synchronized.
type Syncer interface {
	MaybeSync(ctx context.Context) bool
}

// Server serves connections sequentially.
type Server struct {
	logger       *slog.Logger
	handler      http.Handler
	syncer       Syncer
	maxLine      int
	headTimeout  time.Duration
	bodyTimeout  time.Duration
	pollInterval time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithSyncer runs s.MaybeSync between connections.
func WithSyncer(s Syncer) Option {
	return func(srv *Server) {
		srv.syncer = s
	}
}

// WithMaxLine sets the request line and header length limit.
func WithMaxLine(n int) Option {
	return func(srv *Server) {
		srv.maxLine = n
	}
}

// WithTimeouts sets the deadlines for reading the head and the body of a request.
func WithTimeouts(head, body time.Duration) Option {
	return func(srv *Server) {
		srv.headTimeout = head
		srv.bodyTimeout = body
	}
}

// WithPollInterval sets how often an idle accept loop wakes up to run the syncer.
func WithPollInterval(d time.Duration) Option {
	return func(srv *Server) {
		srv.pollInterval = d
	}
}

// New creates a Server dispatching requests to handler.
func New(logger *slog.Logger, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		logger:       logger,
		handler:      handler,
		maxLine:      httpwire.DefaultMaxLineLength,
		headTimeout:  DefaultHeadTimeout,
		bodyTimeout:  DefaultBodyTimeout,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// deadliner is a listener whose Accept can time out.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Serve accepts connections on ln until ctx is cancelled. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer func() {
		stop()
		_ = ln.Close()
	}()

	s.logger.Info("Server started", "addr", ln.Addr().String())

	for {
		if ctx.Err() != nil {
			return nil
		}

		if s.syncer != nil {
			s.syncer.MaybeSync(ctx)
		}

		if d, ok := ln.(deadliner); ok && s.pollInterval > 0 {
			_ = d.SetDeadline(time.Now().Add(s.pollInterval))
		}

		conn, err := ln.Accept()
		if err != nil {
			var netErr net.Error
			switch {
			case ctx.Err() != nil, errors.Is(err, net.ErrClosed):
				s.logger.Info("Server stopped")
				return nil
			case errors.As(err, &netErr) && netErr.Timeout():
				continue
			default:
				return err
			}
		}

		s.ServeConn(ctx, conn)
	}
}

// ServeConn serves a single request on conn and closes it.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.setReadDeadline(conn, s.headTimeout)

	br := bufio.NewReaderSize(conn, s.maxLine)
	head, err := httpwire.ReadHead(httpwire.NewLineReader(br, s.maxLine))
	if err != nil {
		s.rejectHead(conn, remote, err)
		return
	}

	s.setReadDeadline(conn, s.bodyTimeout)

	// тело ограничено Content-Length; байты после него не читаются
	body := bufio.NewReaderSize(io.LimitReader(br, head.ContentLength), s.maxLine)

	req, err := head.Request(ctx, body, remote)
	if err != nil {
		s.rejectHead(conn, remote, err)
		return
	}

	rw := httpwire.NewResponseWriter(conn)
	if !s.dispatch(rw, req) {
		s.logger.Debug("Request aborted by handler", "remote_addr", remote, "path", head.Path)
		return
	}

	if err := rw.Flush(); err != nil {
		s.logger.Debug("Failed to send response", "remote_addr", remote, "error", err)
	}
}

// dispatch runs the handler. It returns false when the handler aborted the response.
func (s *Server) dispatch(rw http.ResponseWriter, req *http.Request) (ok bool) {
	defer func() {
		if err := recover(); err != nil {
			if err != http.ErrAbortHandler {
				panic(err)
			}
			ok = false
		}
	}()

	s.handler.ServeHTTP(rw, req)
	return true
}

func (s *Server) rejectHead(conn net.Conn, remote string, err error) {
	status := httpwire.StatusFor(err)
	if status == 0 {
		s.logger.Debug("Connection dropped", "remote_addr", remote, "error", err)
		return
	}

	s.logger.Warn("Bad request head", "remote_addr", remote, "status", status, "error", err)

	rw := httpwire.NewResponseWriter(conn)
	http.Error(rw, http.StatusText(status), status)
	if err := rw.Flush(); err != nil {
		s.logger.Debug("Failed to send response", "remote_addr", remote, "error", err)
	}
}

func (s *Server) setReadDeadline(conn net.Conn, d time.Duration) {
	if d <= 0 {
		return
	}
	if err := conn.SetReadDeadline(time.Now().Add(d)); err != nil {
		s.logger.Debug("Failed to set read deadline", "error", err)
	}
}
