package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oggyb/fitsocial/internal/config"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

func NewTokens(secret, issuer string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("session: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// TokensFromConfig reads the Auth section.
func TokensFromConfig(cfg *config.Config) (*Tokens, error) {
	return NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
}

// Issue signs a token whose subject is the session's account id.
func (t *Tokens) Issue(s Session) (string, error) {
	if err := s.Require(); err != nil {
		return "", err
	}
	issued := s.IssuedAt
	if issued.IsZero() {
		issued = t.now()
	}
	c := claims{
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.AccountID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("session: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and issuer and returns the Session.
func (t *Tokens) Verify(token string) (Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(tok *jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Session{}, svcErr.Unauthenticated("invalid or expired token")
	}
	if c.Subject == "" {
		return Session{}, svcErr.Unauthenticated("token has no subject")
	}
	s := Session{AccountID: c.Subject, Username: c.Username}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	return s, nil
}
