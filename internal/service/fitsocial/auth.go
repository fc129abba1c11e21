package fitsocial

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/session"
)

// AuthorizationHeader carries "Bearer <token>".
const AuthorizationHeader = "authorization"

// publicMethods can be called without a session.
var publicMethods = map[string]bool{
	fullMethod("SignUp"): true,
	fullMethod("SignIn"): true,
}

// Authenticator resolves bearer tokens into a Session on the request
// context. Only SocialService methods are guarded.
type Authenticator struct {
	sessions *session.Facade
}

func NewAuthenticator(sessions *session.Facade) *Authenticator {
	return &Authenticator{sessions: sessions}
}

func guarded(method string) bool {
	return strings.HasPrefix(method, "/"+ServiceName+"/") && !publicMethods[method]
}

func (a *Authenticator) authenticate(ctx context.Context) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(AuthorizationHeader)
	if len(values) == 0 {
		return nil, session.ErrNoSession
	}
	token, ok := strings.CutPrefix(values[0], "Bearer ")
	if !ok || token == "" {
		return nil, svcErr.Unauthenticated("malformed authorization header")
	}
	sess, err := a.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}
	return session.With(ctx, sess), nil
}

// Unary returns the unary server interceptor.
func (a *Authenticator) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !guarded(info.FullMethod) {
			return handler(ctx, req)
		}
		ctx, err := a.authenticate(ctx)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		return handler(ctx, req)
	}
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }

// Stream returns the stream server interceptor.
func (a *Authenticator) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !guarded(info.FullMethod) {
			return handler(srv, ss)
		}
		ctx, err := a.authenticate(ss.Context())
		if err != nil {
			return svcErr.Map(err)
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}
