package server

import "google.golang.org/grpc"

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// InterceptorProvider is implemented by registrars whose services need
// interceptors installed on the server, e.g. for authentication.
type InterceptorProvider interface {
	UnaryInterceptors() []grpc.UnaryServerInterceptor
	StreamInterceptors() []grpc.StreamServerInterceptor
}
