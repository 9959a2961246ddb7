package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	coregrpc "github.com/msto63/lox/pkg/core/grpc"
	"github.com/msto63/lox/pkg/core/health"
	"github.com/msto63/lox/pkg/core/version"
)

// Config holds server configuration
type Config struct {
	GRPCAddress      string
	HTTPAddress      string
	EnableReflection bool
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		GRPCAddress:     "127.0.0.1:9310",
		HTTPAddress:     "127.0.0.1:8310",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server runs the gRPC service and the HTTP endpoints side by side
type Server struct {
	grpc     *coregrpc.Server
	http     *http.Server
	frontend *Frontend
	logger   *mdwlog.Logger
	config   Config
}

// New creates a server around f
func New(cfg Config, f *Frontend) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	grpcCfg := coregrpc.DefaultServerConfig(cfg.GRPCAddress)
	grpcCfg.EnableReflection = cfg.EnableReflection
	grpcCfg.Logger = f.logger
	grpcServer := coregrpc.NewServer(grpcCfg)
	grpcServer.RegisterService(&FrontendServiceDesc, f)

	return &Server{
		grpc: grpcServer,
		http: &http.Server{
			Addr:         cfg.HTTPAddress,
			Handler:      Handler(f),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		frontend: f,
		logger:   f.logger,
		config:   cfg,
	}
}

// Handler returns the HTTP routes: /ws and /healthz
func Handler(f *Frontend) http.Handler {
	registry := NewHealthRegistry(f)

	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(f))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		report := registry.Check(ctx)

		w.Header().Set("Content-Type", "application/json")
		if !report.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	})
	return loggingMiddleware(f.logger, mux)
}

// healthProbe must always parse to healthProbeTree
const (
	healthProbe     = "1 + 2"
	healthProbeTree = "(+ 1 2)"
)

// NewHealthRegistry checks that the engine parses a probe expression and,
// when history is enabled, that the store answers. A failing store only
// degrades the service.
func NewHealthRegistry(f *Frontend) *health.Registry {
	registry := health.NewRegistry("lox", version.Release)
	registry.RegisterFunc("engine", func(ctx context.Context) health.CheckResult {
		res := f.engine.ProcessString(healthProbe)
		defer res.Release()
		if res.HadError() || res.String() != healthProbeTree {
			return health.CheckResult{
				Status:  health.StatusUnhealthy,
				Message: fmt.Sprintf("probe %q gave %q", healthProbe, res.String()),
			}
		}
		return health.CheckResult{Status: health.StatusHealthy}
	})
	if f.store != nil {
		registry.Register(health.PingCheck("store", true, func(ctx context.Context) error {
			_, err := f.store.Stats(ctx)
			return err
		}))
	}
	return registry
}

// Run serves until ctx is done, then shuts both servers down
func (s *Server) Run(ctx context.Context) error {
	grpcLis, err := net.Listen("tcp", s.config.GRPCAddress)
	if err != nil {
		return listenError(err, s.config.GRPCAddress)
	}
	httpLis, err := net.Listen("tcp", s.config.HTTPAddress)
	if err != nil {
		grpcLis.Close()
		return listenError(err, s.config.HTTPAddress)
	}
	return s.Serve(ctx, grpcLis, httpLis)
}

// Serve serves on existing listeners until ctx is done
func (s *Server) Serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- s.grpc.Serve(grpcLis)
	}()
	go func() {
		s.logger.Info("HTTP server listening", mdwlog.Field("address", httpLis.Addr().String()))
		if err := s.http.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.grpc.StopWithTimeout(shutdownCtx)
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.WarnWithErr("HTTP shutdown failed", err)
	}

	if serveErr != nil {
		return mdwerror.Wrap(serveErr, "server failed").
			WithCode(mdwerror.CodeNetworkError).
			WithOperation("server.Serve")
	}
	return nil
}

func listenError(err error, addr string) error {
	return mdwerror.Wrap(err, "failed to listen").
		WithCode(mdwerror.CodeNetworkError).
		WithOperation("server.Run").
		WithDetail("address", addr)
}

func loggingMiddleware(logger *mdwlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request", mdwlog.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapper.statusCode,
			"duration": time.Since(start).String(),
		})
	})
}

// responseWrapper captures the status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}
