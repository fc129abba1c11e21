package server

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/fitsocial/internal/config"
)

// NewGRPCServer builds a server with logging, the interceptors the
// registrars ask for, all registrar services, health and reflection.
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{UnaryLogging(log)}
	stream := []grpc.StreamServerInterceptor{StreamLogging(log)}
	for _, r := range registrars {
		if p, ok := r.(InterceptorProvider); ok {
			unary = append(unary, p.UnaryInterceptors()...)
			stream = append(stream, p.StreamInterceptors()...)
		}
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer
}

// StartGRPCServer boots a gRPC server and registers all provided services
func StartGRPCServer(cfg *config.Config, log *slog.Logger, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return NewGRPCServer(log, registrars...).Serve(lis)
}
