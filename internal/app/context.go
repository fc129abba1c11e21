package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/fitsocial/internal/blobstore"
	"github.com/oggyb/fitsocial/internal/cache"
	"github.com/oggyb/fitsocial/internal/config"
	"github.com/oggyb/fitsocial/internal/docstore"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
)

// AppContext holds shared dependencies (DB, Redis, Logger, stores, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger

	Store      *docstore.Store
	Repos      *repository.Repositories
	Blobs      blobstore.Store
	Identities session.IdentityProvider
	Sessions   *session.Facade
}

// New creates a new AppContext and builds the store clients on top of the
// raw connections.
func New(cfg *config.Config, gdb *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) (*AppContext, error) {
	store := docstore.New(gdb, rdb, logger.With("component", "docstore"), docstore.Options{
		Timeout:    cfg.Store.Timeout,
		MaxRetries: cfg.Store.MaxRetries,
	})
	repos := repository.New(store)

	blobs, err := blobstore.New(cfg, rdb)
	if err != nil {
		return nil, fmt.Errorf("failed to init blob store: %w", err)
	}

	tokens, err := session.TokensFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init tokens: %w", err)
	}
	identities := session.NewLocalProvider(gdb, cfg.Store.Timeout)

	return &AppContext{
		Config:     cfg,
		DB:         gdb,
		RedisCache: rdb,
		Logger:     logger,
		Store:      store,
		Repos:      repos,
		Blobs:      blobs,
		Identities: identities,
		Sessions:   session.NewFacade(identities, tokens, repos.Accounts, logger.With("component", "session")),
	}, nil
}
