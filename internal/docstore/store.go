// Package docstore is the document store client: generic CRUD, queries,
// versioned read-modify-write and change subscriptions over named
// collections backed by gorm.
package docstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// ErrNoChange may be returned from a Mutate callback to skip the write.
var ErrNoChange = errors.New("docstore: no change")

// Document is implemented by every persisted model.
type Document interface {
	DocID() string
	DocVersion() int64
	SetDocVersion(v int64)
}

// DocPtr constrains a type parameter to *T implementing Document.
type DocPtr[T any] interface {
	*T
	Document
}

// Bus carries change notifications between store clients.
type Bus interface {
	Publish(ctx context.Context, collection string, payload []byte) error
	Subscribe(ctx context.Context, collection string) (<-chan []byte, func() error, error)
}

type Options struct {
	// Timeout bounds every single store call. Zero disables it.
	Timeout time.Duration
	// MaxRetries bounds optimistic-concurrency retries in Mutate.
	MaxRetries int
}

// Store holds what all collections share.
type Store struct {
	db   *gorm.DB
	bus  Bus
	log  *slog.Logger
	opts Options
}

// New creates a Store. bus may be nil, in which case no change events are
// published and Subscribe fails.
func New(db *gorm.DB, bus Bus, log *slog.Logger, opts Options) *Store {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	return &Store{db: db, bus: bus, log: log, opts: opts}
}

// DB exposes the underlying connection for callers that need plain gorm.
func (s *Store) DB() *gorm.DB { return s.db }

// Dialect names the SQL dialect in use ("mysql", "postgres", "sqlite").
func (s *Store) Dialect() string { return s.db.Dialector.Name() }

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}
