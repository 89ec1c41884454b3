// Package server exposes a running simulation: guard events over a websocket
// stream and prometheus metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/guardai/internal/core/events/bus"
	"github.com/zeusync/guardai/internal/core/observability/log"
)

type Config struct {
	ListenAddr   string        `mapstructure:"listen_addr"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// SendBuffer is the number of events queued per client before it is
	// dropped.
	SendBuffer int `mapstructure:"send_buffer"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8080",
		WriteTimeout: 5 * time.Second,
		SendBuffer:   256,
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalidConfig)
	}
	if c.WriteTimeout <= 0 || c.SendBuffer <= 0 {
		return fmt.Errorf("%w: write timeout and send buffer must be positive", ErrInvalidConfig)
	}
	return nil
}

// Server serves /events, /metrics and /healthz.
type Server struct {
	config Config
	stream *EventStream
	http   *http.Server
	ln     net.Listener
	done   chan struct{}

	running atomic.Bool
	closed  atomic.Bool

	logger log.Log
}

func NewServer(cfg Config, events bus.EventBus, gatherer prometheus.Gatherer, logger log.Log) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.With(log.String("component", "server"))
	stream, err := NewEventStream(events, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{config: cfg, stream: stream, logger: logger}
	s.http = &http.Server{Handler: s.Handler(gatherer), ReadHeaderTimeout: 5 * time.Second}
	return s, nil
}

func (s *Server) Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/events", s.stream)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) Stream() *EventStream { return s.stream }

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.config.ListenAddr
	}
	return s.ln.Addr().String()
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	s.ln = ln
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Serve failed", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Stop disconnects stream clients and shuts the HTTP server down. A stopped
// server cannot be restarted.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.closed.Store(true)
	s.logger.Info("Stopping server")

	err := errors.Join(s.stream.Close(), s.http.Shutdown(ctx))
	select {
	case <-s.done:
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}

	s.logger.Info("Server stopped")
	return err
}
