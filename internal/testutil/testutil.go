// Package testutil wires an in-memory SQLite database and a miniredis
// instance into an AppContext for package tests.
package testutil

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/fitsocial/internal/app"
	"github.com/oggyb/fitsocial/internal/cache"
	"github.com/oggyb/fitsocial/internal/config"
	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/logger"
	"github.com/oggyb/fitsocial/internal/session"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(t.Name(), "_"))
	cfg := db.GormConfig("silent")
	cfg.SkipDefaultTransaction = true

	gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory db alive and serializes writes
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(db.Models()...))
	return gdb
}

// NewRedis starts a miniredis and returns a cache bound to it.
func NewRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(NewConfig(mr.Addr()))
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

// NewConfig returns the default config pointed at test backends.
func NewConfig(redisAddr string) *config.Config {
	cfg := config.New()
	cfg.App.ENV = "test"
	cfg.DB.Driver = "sqlite"
	cfg.DB.LogLevel = "silent"
	cfg.Redis.Addr = redisAddr
	cfg.Redis.Password = ""
	cfg.Redis.DB = 0
	cfg.Store.Timeout = 5 * time.Second
	cfg.Store.MaxRetries = 5
	cfg.Blob.Driver = "redis"
	cfg.Blob.PublicBaseURL = "http://blobs.test"
	cfg.Auth.JWTSecret = "test-secret-0123456789"
	cfg.Auth.Issuer = "fitsocial-test"
	cfg.Feed.PageSize = 20
	return cfg
}

// Env is everything a service test needs.
type Env struct {
	App   *app.AppContext
	Redis *miniredis.Miniredis
}

// NewEnv builds a fully wired AppContext on SQLite + miniredis.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	rc, mr := NewRedis(t)
	appCtx, err := app.New(NewConfig(mr.Addr()), NewDB(t), rc, logger.Discard())
	require.NoError(t, err)

	if lp, ok := appCtx.Identities.(*session.LocalProvider); ok {
		lp.WithCost(bcrypt.MinCost)
	}
	return &Env{App: appCtx, Redis: mr}
}

// AccountOpt tweaks a fixture account before it is stored.
type AccountOpt func(*db.Account)

func Following(ids ...string) AccountOpt {
	return func(a *db.Account) { a.FollowedIDs = append(db.IDSet{}, ids...) }
}

// CreateAccount stores a fixture account with empty sets at level 1.
func (e *Env) CreateAccount(t *testing.T, id string, opts ...AccountOpt) *db.Account {
	t.Helper()
	if id == "" {
		id = uuid.NewString()
	}
	acc := &db.Account{
		ID:                id,
		FirstName:         "First " + id,
		Username:          id,
		UsernameKey:       id,
		Email:             id + "@test.com",
		EmailKey:          id + "@test.com",
		BirthDate:         time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC),
		FollowedIDs:       db.IDSet{},
		ReactedPostIDs:    db.IDSet{},
		CommentedPostIDs:  db.IDSet{},
		ReactedCommentIDs: db.IDSet{},
		Medals:            db.IDSet{},
		Level:             1,
	}
	for _, o := range opts {
		o(acc)
	}
	require.NoError(t, e.App.Repos.Accounts.Create(context.Background(), acc))
	return acc
}

// CreatePost stores a fixture post with an explicit creation time.
func (e *Env) CreatePost(t *testing.T, id, authorID, text string, createdAt time.Time) *db.Post {
	t.Helper()
	p := &db.Post{
		ID:                   id,
		AuthorID:             authorID,
		AuthorUsername:       authorID,
		Text:                 text,
		ReactingAccountIDs:   db.IDSet{},
		CommentingAccountIDs: db.IDSet{},
		CreatedAt:            createdAt.UTC(),
	}
	require.NoError(t, e.App.Repos.Posts.Create(context.Background(), p))
	return p
}

// Account re-reads an account.
func (e *Env) Account(t *testing.T, id string) *db.Account {
	t.Helper()
	a, err := e.App.Repos.Accounts.Get(context.Background(), id)
	require.NoError(t, err)
	return a
}

// Post re-reads a post.
func (e *Env) Post(t *testing.T, id string) *db.Post {
	t.Helper()
	p, err := e.App.Repos.Posts.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

// Session returns a signed-in session for an account.
func Session(accountID string) session.Session {
	return session.Session{AccountID: accountID, Username: accountID, IssuedAt: time.Now().UTC()}
}
