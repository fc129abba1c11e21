package docstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

// Collection is a typed view over one named collection (table).
type Collection[T any, P DocPtr[T]] struct {
	store *Store
	name  string
}

// NewCollection binds type T to the collection called name. The model's
// TableName must match name.
func NewCollection[T any, P DocPtr[T]](s *Store, name string) *Collection[T, P] {
	return &Collection[T, P]{store: s, name: name}
}

func (c *Collection[T, P]) Name() string { return c.name }

// Get returns the document or a NotFound error.
func (c *Collection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()

	var doc T
	err := c.store.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, c.wrap("get", id, err)
	}
	return &doc, nil
}

// Query returns every document matching q.
func (c *Collection[T, P]) Query(ctx context.Context, q Query) ([]T, error) {
	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()

	var docs []T
	tx := q.apply(c.store.db.WithContext(ctx).Model(new(T)), c.store.Dialect())
	if err := tx.Find(&docs).Error; err != nil {
		return nil, c.wrap("query", "", err)
	}
	return docs, nil
}

// Count returns how many documents match the filters.
func (c *Collection[T, P]) Count(ctx context.Context, filters ...Filter) (int64, error) {
	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()

	var n int64
	tx := applyFilters(c.store.db.WithContext(ctx).Model(new(T)), c.store.Dialect(), filters)
	if err := tx.Count(&n).Error; err != nil {
		return 0, c.wrap("count", "", err)
	}
	return n, nil
}

// Create inserts a new document. A duplicate id or unique key yields
// AlreadyExists.
func (c *Collection[T, P]) Create(ctx context.Context, doc P) error {
	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()

	if err := c.store.db.WithContext(ctx).Create(doc).Error; err != nil {
		return c.wrap("create", doc.DocID(), err)
	}
	c.publish(ctx, ChangeCreated, doc.DocID(), doc.DocVersion())
	return nil
}

// Set creates or fully replaces a document (last writer wins).
func (c *Collection[T, P]) Set(ctx context.Context, doc P) error {
	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()

	doc.SetDocVersion(doc.DocVersion() + 1)
	err := c.store.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(doc).Error
	if err != nil {
		return c.wrap("set", doc.DocID(), err)
	}
	c.publish(ctx, ChangeUpdated, doc.DocID(), doc.DocVersion())
	return nil
}

// Update writes a partial set of columns and bumps the version.
func (c *Collection[T, P]) Update(ctx context.Context, id string, fields map[string]any) error {
	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()

	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")

	res := c.store.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return c.wrap("update", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return svcErr.NotFound(c.name, id)
	}
	c.publish(ctx, ChangeUpdated, id, 0)
	return nil
}

// Mutate reads the document, applies fn and writes it back only if nobody
// else wrote it in between (version check). On a lost race it re-reads and
// re-applies fn, up to MaxRetries attempts, then fails with Conflict.
//
// fn may return ErrNoChange to skip the write; Mutate then returns the
// document as read. Any other error from fn aborts and is returned as is.
func (c *Collection[T, P]) Mutate(ctx context.Context, id string, fn func(P) error) (*T, error) {
	for attempt := 1; ; attempt++ {
		doc, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		p := P(doc)
		prev := p.DocVersion()

		if err := fn(p); err != nil {
			if errors.Is(err, ErrNoChange) {
				return doc, nil
			}
			return nil, err
		}
		p.SetDocVersion(prev + 1)

		ok, err := c.compareAndSwap(ctx, p, prev)
		if err != nil {
			return nil, err
		}
		if ok {
			c.publish(ctx, ChangeUpdated, id, prev+1)
			return doc, nil
		}
		if attempt >= c.store.opts.MaxRetries {
			c.store.log.Warn("mutate retries exhausted", "collection", c.name, "id", id, "attempts", attempt)
			return nil, svcErr.Conflict(c.name, id)
		}
		c.store.log.Debug("version conflict, retrying", "collection", c.name, "id", id, "attempt", attempt)
	}
}

func (c *Collection[T, P]) compareAndSwap(ctx context.Context, doc P, prev int64) (bool, error) {
	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()

	res := c.store.db.WithContext(ctx).
		Model(doc).
		Where("version = ?", prev).
		Select("*").
		Updates(doc)
	if res.Error != nil {
		return false, c.wrap("update", doc.DocID(), res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Delete removes one document; NotFound if it does not exist.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()

	res := c.store.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return c.wrap("delete", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return svcErr.NotFound(c.name, id)
	}
	c.publish(ctx, ChangeDeleted, id, 0)
	return nil
}

// DeleteWhere removes every matching document and returns their ids.
func (c *Collection[T, P]) DeleteWhere(ctx context.Context, filters ...Filter) ([]string, error) {
	docs, err := c.Query(ctx, Query{Filters: filters})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for i := range docs {
		ids = append(ids, P(&docs[i]).DocID())
	}
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := c.store.withTimeout(ctx)
	defer cancel()
	if err := c.store.db.WithContext(ctx).Where("id IN ?", ids).Delete(new(T)).Error; err != nil {
		return nil, c.wrap("delete", "", err)
	}
	for _, id := range ids {
		c.publish(ctx, ChangeDeleted, id, 0)
	}
	return ids, nil
}

// wrap maps driver errors onto the error taxonomy.
func (c *Collection[T, P]) wrap(op, id string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return svcErr.NotFound(c.name, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return svcErr.AlreadyExists(c.name, "key")
	default:
		return svcErr.Unavailable(op+" "+c.name, err)
	}
}
