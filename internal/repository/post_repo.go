package repository

import (
	"context"
	"time"

	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/docstore"
	"github.com/oggyb/fitsocial/internal/utils/pagination"
)

// PostSet names one of the set-valued fields of a Post.
type PostSet int

const (
	PostReactionsSet PostSet = iota
	PostCommentersSet
)

func (s PostSet) column() string {
	if s == PostReactionsSet {
		return "reacting_account_ids"
	}
	return "commenting_account_ids"
}

func (s PostSet) pick(p *db.Post) *db.IDSet {
	if s == PostReactionsSet {
		return &p.ReactingAccountIDs
	}
	return &p.CommentingAccountIDs
}

// PostRepository provides data access for the posts collection.
type PostRepository struct {
	*docstore.Collection[db.Post, *db.Post]
}

// ListByAuthors returns posts by any of the given authors.
//
// Behavior:
//   - Ordered by created_at DESC, id ASC (id breaks timestamp ties).
//   - Supports cursor-based pagination via paginationToken.
//   - Fetches limit+1 rows to know whether a next page exists.
//
// Example:
//
//	repo.ListByAuthors(ctx, []string{"u1", "u2"}, nil, 20)
func (r *PostRepository) ListByAuthors(
	ctx context.Context,
	authorIDs []string,
	paginationToken *string,
	limit int,
) ([]db.Post, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	q := docstore.Query{
		Filters: []docstore.Filter{docstore.In("author_id", authorIDs)},
		OrderBy: []docstore.Order{{Field: "created_at", Desc: true}, {Field: "id"}},
		Limit:   limit + 1,
	}

	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		q.Filters = append(q.Filters, docstore.Expr(
			"(created_at < ? OR (created_at = ? AND id > ?))",
			ts, ts, cursor.ID,
		))
	}

	posts, err := r.Query(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	return pagination.Page(posts, limit, func(p db.Post) pagination.Cursor {
		return pagination.Cursor{ID: p.ID, CreatedUnix: p.CreatedAt.UnixMilli()}
	})
}

// ListByAuthor returns every post of one author, newest first.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]db.Post, error) {
	return r.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("author_id", authorID)},
		OrderBy: []docstore.Order{{Field: "created_at", Desc: true}, {Field: "id"}},
	})
}

// FindContaining returns posts whose set holds accountID.
func (r *PostRepository) FindContaining(ctx context.Context, set PostSet, accountID string) ([]db.Post, error) {
	return r.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Contains(set.column(), accountID)},
		OrderBy: []docstore.Order{{Field: "id"}},
	})
}

func (r *PostRepository) AddToSet(ctx context.Context, postID string, set PostSet, accountID string) (bool, error) {
	return addToSet(ctx, r.Collection, postID, set.pick, accountID)
}

func (r *PostRepository) RemoveFromSet(ctx context.Context, postID string, set PostSet, accountID string) (bool, error) {
	return removeFromSet(ctx, r.Collection, postID, set.pick, accountID)
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
