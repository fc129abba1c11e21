// Package session is the identity facade: who is calling, how they proved
// it, and how that proof is carried between requests.
package session

import (
	"context"
	"time"

	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

// Session identifies the authenticated account for one call. Services take
// it as an explicit argument; the context helpers below are only for the
// transport layer.
type Session struct {
	AccountID string
	Username  string
	IssuedAt  time.Time
}

// ErrNoSession is returned when an operation needs a signed-in account.
var ErrNoSession = svcErr.Unauthenticated("no active session")

// Require fails with ErrNoSession for the zero Session.
func (s Session) Require() error {
	if s.AccountID == "" {
		return ErrNoSession
	}
	return nil
}

type ctxKey struct{}

func With(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func From(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.AccountID != ""
}
