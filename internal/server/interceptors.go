package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func logCall(log *slog.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	args := []any{"method", method, "code", code.String(), "duration", time.Since(start)}
	switch code {
	case codes.OK:
		log.Debug("rpc finished", args...)
	case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
		log.Error("rpc failed", append(args, "err", err)...)
	default:
		log.Info("rpc rejected", append(args, "err", err)...)
	}
}

// UnaryLogging logs every unary call with its status code and duration.
func UnaryLogging(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(log, info.FullMethod, start, err)
		return resp, err
	}
}

// StreamLogging logs every stream once it ends.
func StreamLogging(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(log, info.FullMethod, start, err)
		return err
	}
}
