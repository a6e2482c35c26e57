// Package grpcserver runs the standard gRPC health service next to the HTTP API.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server bundles the gRPC server with its health registry.
type Server struct {
	GRPC   *grpc.Server
	Health *health.Server
	log    *zap.Logger
}

// New builds a gRPC server exposing grpc.health.v1 and, in dev, reflection.
// Every service starts NOT_SERVING until Watch reports a healthy dependency.
func New(log *zap.Logger, dev bool) *Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
		),
		grpc.ChainStreamInterceptor(
			RecoverStream(log),
			LoggingStream(log),
		),
	)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	if dev {
		reflection.Register(s)
	}
	return &Server{GRPC: s, Health: hs, log: log}
}

// Watch pings dep every interval and mirrors the result into the overall
// health status. It returns when ctx is done.
func (s *Server) Watch(ctx context.Context, dep Pinger, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if err := dep.Ping(pctx); err != nil {
			s.log.Warn("health: dependency down", zap.Error(err))
			s.Health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		s.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}

	check()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}

// Shutdown flips every service to NOT_SERVING and stops gracefully,
// falling back to a hard stop after timeout.
func (s *Server) Shutdown(timeout time.Duration) {
	s.Health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.GRPC.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.GRPC.Stop()
	}
}
