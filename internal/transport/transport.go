// Package transport serves the HTTP API and a gRPC health endpoint on one
// TCP listener. cmux routes each connection by its first bytes: HTTP/2
// requests with content-type application/grpc go to gRPC, everything else to
// the HTTP handler.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/soheilhy/cmux"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the gRPC health service name reported next to the
// overall ("") status.
const ServiceName = "exitcalc.v1.Calculator"

// Config bounds the HTTP server. Zero values take the defaults below.
type Config struct {
	ReadTimeout     time.Duration // default 15s
	WriteTimeout    time.Duration // default 60s
	IdleTimeout     time.Duration // default 120s
	ShutdownTimeout time.Duration // default 20s
}

func (c Config) withDefaults() Config {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 20 * time.Second
	}
	return c
}

// Server owns the HTTP and gRPC servers sharing one listener.
type Server struct {
	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
	cfg    Config
	logger *slog.Logger
}

// New builds a Server around handler. Call Serve to start it.
func New(handler http.Handler, cfg Config, logger *slog.Logger) *Server {
	cfg = cfg.withDefaults()

	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &Server{
		http: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		grpc:   gs,
		health: hs,
		cfg:    cfg,
		logger: logger,
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve blocks until ctx is cancelled or one of the servers fails. On
// cancellation it reports NOT_SERVING, drains HTTP requests for up to
// ShutdownTimeout, stops gRPC gracefully and closes the listener. It returns
// nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	m := cmux.New(lis)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.grpc.Serve(grpcL); err != nil && ctx.Err() == nil {
			return fmt.Errorf("transport: grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.http.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
			return fmt.Errorf("transport: http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := m.Serve(); err != nil && !errors.Is(err, net.ErrClosed) && ctx.Err() == nil {
			return fmt.Errorf("transport: mux: %w", err)
		}
		return nil
	})

	s.logger.Info("server listening", "addr", lis.Addr().String())

	// Shutdown runs on signal and also when a sibling fails, so the group
	// never waits on a server that is still accepting.
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(lis)
	})

	return g.Wait()
}

func (s *Server) shutdown(lis net.Listener) error {
	s.logger.Info("shutting down listeners")
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(ctx)
	if err != nil {
		err = fmt.Errorf("transport: http shutdown: %w", err)
	}

	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpc.Stop()
	}

	// Unblocks the mux accept loop; a second close of the same listener
	// returns an error we do not care about.
	_ = lis.Close()
	return err
}
