package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/dmitrymomot/trustkit/pkg/logger"
)

// Server wraps http.Server with graceful shutdown and logging. Signal
// handling is left to the caller, usually via signal.NotifyContext.
type Server struct {
	opts *options

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener

	shutdownOnce sync.Once
	shutdownErr  error
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Discard()
	}
	o.logger = o.logger.With(logger.Component("httpserver"))
	return &Server{opts: o}
}

// Addr returns the address the server is listening on, or "" before Run.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Run listens, serves handler and blocks until ctx is done or Shutdown is
// called. It returns ErrStart if the listener cannot be opened or serving
// fails, and ErrShutdown if the graceful shutdown times out.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	ln, err := net.Listen("tcp", s.opts.addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       s.opts.readTimeout,
		ReadHeaderTimeout: s.opts.readHeaderTimeout,
		WriteTimeout:      s.opts.writeTimeout,
		IdleTimeout:       s.opts.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.opts.logger.Handler(), slog.LevelWarn),
	}
	s.srv, s.ln = srv, ln
	s.mu.Unlock()

	addr := ln.Addr().String()
	s.opts.logger.Info("http server listening", slog.String("addr", addr))
	for _, h := range s.opts.startHooks {
		h(addr, s.opts.logger)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var serveErr error
	select {
	case <-ctx.Done():
		// The parent context is already cancelled; shutdown gets a fresh one.
		if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
			return err
		}
		serveErr = <-errCh
	case serveErr = <-errCh:
		// Shutdown called directly, or Serve failed on its own.
		_ = s.Shutdown(context.WithoutCancel(ctx))
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, serveErr)
	}
	return s.shutdownErr
}

// Shutdown stops the server gracefully. It is safe to call more than once
// and before Run, in which case it does nothing.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, s.opts.shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.shutdownErr = errors.Join(ErrShutdown, err)
			_ = srv.Close()
		}
		s.opts.logger.Info("http server stopped")
		addr := s.Addr()
		for _, h := range s.opts.stopHooks {
			h(addr, s.opts.logger)
		}
	})
	return s.shutdownErr
}
