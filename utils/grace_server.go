package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DEFAULT_READ_TIMEOUT     = 60 * time.Second
	DEFAULT_WRITE_TIMEOUT    = DEFAULT_READ_TIMEOUT
	DEFAULT_SHUTDOWN_TIMEOUT = 30 * time.Second
)

// Server wraps http.Server with signal-driven graceful shutdown. Hooks run after the
// HTTP server has drained, in registration order, so the store closes last.
type Server struct {
	*http.Server

	listener        net.Listener
	logger          *zap.Logger
	shutdownTimeout time.Duration
	signalChan      chan os.Signal
	shutdownChan    chan struct{}
	stopOnce        sync.Once

	mu    sync.Mutex
	hooks []func(context.Context) error
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, logger *zap.Logger, shutdownTimeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = DEFAULT_SHUTDOWN_TIMEOUT
	}
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  DEFAULT_READ_TIMEOUT,
			WriteTimeout: DEFAULT_WRITE_TIMEOUT,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		signalChan:      make(chan os.Signal, 1),
		shutdownChan:    make(chan struct{}),
	}
}

// OnShutdown registers a hook that runs once the server has stopped accepting requests
// and in-flight ones have finished.
func (srv *Server) OnShutdown(hook func(context.Context) error) {
	srv.mu.Lock()
	srv.hooks = append(srv.hooks, hook)
	srv.mu.Unlock()
}

// Listen binds the listening socket without serving yet.
func (srv *Server) Listen() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("net.Listen error: %w", err)
	}
	srv.listener = ln
	return nil
}

// ListenAddr is the bound address, useful when Addr used port 0.
func (srv *Server) ListenAddr() net.Addr {
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Addr()
}

// ListenAndServe serves until SIGINT/SIGTERM or Stop, then drains and runs hooks.
func (srv *Server) ListenAndServe() error {
	if srv.listener == nil {
		if err := srv.Listen(); err != nil {
			return err
		}
	}
	go srv.handleSignals()
	err := srv.Server.Serve(srv.listener)
	if !errors.Is(err, http.ErrServerClosed) {
		// serving failed on its own; still drain and run hooks
		srv.Stop()
	}
	// Wait until Shutdown and hooks finished
	<-srv.shutdownChan
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop triggers the same graceful path as SIGTERM.
func (srv *Server) Stop() {
	srv.stopOnce.Do(func() { go srv.shutdownHTTPServer() })
}

func (srv *Server) handleSignals() {
	signal.Notify(srv.signalChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(srv.signalChan)

	select {
	case sig := <-srv.signalChan:
		srv.logger.Info("received signal, graceful shutting down HTTP server", zap.String("signal", sig.String()))
		srv.stopOnce.Do(srv.shutdownHTTPServer)
	case <-srv.shutdownChan:
	}
}

func (srv *Server) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), srv.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		srv.logger.Info("HTTP server shutdown success")
	}

	srv.mu.Lock()
	hooks := append([]func(context.Context) error(nil), srv.hooks...)
	srv.mu.Unlock()
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			srv.logger.Error("shutdown hook failed", zap.Error(err))
		}
	}
	close(srv.shutdownChan)
}
