package fitsocial

import (
	"google.golang.org/grpc"

	"github.com/oggyb/fitsocial/internal/app"
)

// Registrar ties the Social service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
	auth   *Authenticator
}

// NewRegistrar creates a new Registrar for the Social service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx, auth: NewAuthenticator(appCtx.Sessions)}
}

// Register attaches the Social service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	RegisterSocialServer(s, NewSocialService(r.appCtx))
}

// UnaryInterceptors must be installed on the server for session handling.
func (r *Registrar) UnaryInterceptors() []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{r.auth.Unary()}
}

func (r *Registrar) StreamInterceptors() []grpc.StreamServerInterceptor {
	return []grpc.StreamServerInterceptor{r.auth.Stream()}
}
