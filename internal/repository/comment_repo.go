package repository

import (
	"context"

	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/docstore"
)

// CommentRepository provides data access for the comments collection.
type CommentRepository struct {
	*docstore.Collection[db.Comment, *db.Comment]
}

func pickCommentReactions(c *db.Comment) *db.IDSet { return &c.ReactingAccountIDs }

// ListByPost returns the comments of a post, oldest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]db.Comment, error) {
	return r.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("post_id", postID)},
		OrderBy: []docstore.Order{{Field: "created_at"}, {Field: "id"}},
	})
}

// ListByAuthor returns every comment written by an account.
func (r *CommentRepository) ListByAuthor(ctx context.Context, authorID string) ([]db.Comment, error) {
	return r.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("author_id", authorID)},
		OrderBy: []docstore.Order{{Field: "created_at"}, {Field: "id"}},
	})
}

// CountByAuthorOnPost counts the comments an account left on one post.
func (r *CommentRepository) CountByAuthorOnPost(ctx context.Context, authorID, postID string) (int64, error) {
	return r.Count(ctx, docstore.Eq("author_id", authorID), docstore.Eq("post_id", postID))
}

// FindReactedBy returns comments whose reaction set holds accountID.
func (r *CommentRepository) FindReactedBy(ctx context.Context, accountID string) ([]db.Comment, error) {
	return r.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Contains("reacting_account_ids", accountID)},
		OrderBy: []docstore.Order{{Field: "id"}},
	})
}

func (r *CommentRepository) AddReaction(ctx context.Context, commentID, accountID string) (bool, error) {
	return addToSet(ctx, r.Collection, commentID, pickCommentReactions, accountID)
}

func (r *CommentRepository) RemoveReaction(ctx context.Context, commentID, accountID string) (bool, error) {
	return removeFromSet(ctx, r.Collection, commentID, pickCommentReactions, accountID)
}
