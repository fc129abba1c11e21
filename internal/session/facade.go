package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/repository"
)

// Facade signs accounts in and resolves tokens back into sessions.
type Facade struct {
	identities IdentityProvider
	tokens     *Tokens
	accounts   *repository.AccountRepository
	log        *slog.Logger
}

func NewFacade(identities IdentityProvider, tokens *Tokens, accounts *repository.AccountRepository, log *slog.Logger) *Facade {
	return &Facade{identities: identities, tokens: tokens, accounts: accounts, log: log}
}

// SignIn checks credentials and opens a session.
//
// Behavior:
//   - Any credential problem surfaces as ErrInvalidCredentials.
//   - Store outages surface as RemoteUnavailable so callers can retry.
func (f *Facade) SignIn(ctx context.Context, email, password string) (Session, string, error) {
	accountID, err := f.identities.Authenticate(ctx, email, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			f.log.Error("authenticate failed", "err", err)
		}
		return Session{}, "", err
	}

	acc, err := f.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, svcErr.ErrNotFound) {
			// identity without an account: a half-finished sign-up or deletion
			f.log.Warn("identity has no account", "account_id", accountID)
			return Session{}, "", ErrInvalidCredentials
		}
		return Session{}, "", err
	}

	s := Session{AccountID: acc.ID, Username: acc.Username, IssuedAt: time.Now().UTC()}
	token, err := f.tokens.Issue(s)
	if err != nil {
		return Session{}, "", err
	}
	f.log.Debug("signed in", "account_id", acc.ID)
	return s, token, nil
}

// Open issues a token for a freshly created account.
func (f *Facade) Open(accountID, username string) (Session, string, error) {
	s := Session{AccountID: accountID, Username: username, IssuedAt: time.Now().UTC()}
	token, err := f.tokens.Issue(s)
	return s, token, err
}

// Resolve turns a bearer token into a Session.
func (f *Facade) Resolve(token string) (Session, error) {
	return f.tokens.Verify(token)
}
