package session

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/fitsocial/internal/db"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

// ErrInvalidCredentials is the single failure callers see for a bad
// sign-in, whatever the cause.
var ErrInvalidCredentials = svcErr.Unauthenticated("wrong credentials")

// IdentityProvider owns credentials. Accounts hold no secrets.
type IdentityProvider interface {
	Register(ctx context.Context, accountID, email, password string) error
	// Authenticate returns the account id the credentials belong to.
	Authenticate(ctx context.Context, email, password string) (string, error)
	// Delete removes the identity; false if there was none.
	Delete(ctx context.Context, accountID string) (bool, error)
}

// LocalProvider keeps bcrypt hashes in the identities table.
type LocalProvider struct {
	db      *gorm.DB
	timeout time.Duration
	cost    int
}

func NewLocalProvider(gdb *gorm.DB, timeout time.Duration) *LocalProvider {
	return &LocalProvider{db: gdb, timeout: timeout, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (p *LocalProvider) WithCost(cost int) *LocalProvider {
	p.cost = cost
	return p
}

func (p *LocalProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// ValidateCredentials rejects empty or malformed credential fields before
// any remote call.
func ValidateCredentials(email, password string) error {
	err := validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.EmailFormat),
		"password": validation.Validate(password, validation.Required, validation.Length(6, 72)),
	}.Filter()
	return svcErr.FromValidation(err)
}

func (p *LocalProvider) Register(ctx context.Context, accountID, email, password string) error {
	if err := ValidateCredentials(email, password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return err
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	err = p.db.WithContext(ctx).Create(&db.Identity{
		AccountID:    accountID,
		EmailKey:     NormalizeKey(email),
		PasswordHash: string(hash),
	}).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return svcErr.AlreadyExists("identity", "email")
	case err != nil:
		return svcErr.Unavailable("register identity", err)
	}
	return nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var ident db.Identity
	err := p.db.WithContext(ctx).Where("email_key = ?", NormalizeKey(email)).First(&ident).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", ErrInvalidCredentials
	case err != nil:
		return "", svcErr.Unavailable("authenticate", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return ident.AccountID, nil
}

func (p *LocalProvider) Delete(ctx context.Context, accountID string) (bool, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	res := p.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&db.Identity{})
	if res.Error != nil {
		return false, svcErr.Unavailable("delete identity", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// NormalizeKey is the case-insensitive form used by unique indexes.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
