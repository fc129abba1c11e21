package repository

import (
	"context"

	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/docstore"
)

// AccountSet names one of the set-valued fields of an Account.
type AccountSet int

const (
	FollowedSet AccountSet = iota
	ReactedPostsSet
	CommentedPostsSet
	ReactedCommentsSet
)

func (s AccountSet) column() string {
	switch s {
	case FollowedSet:
		return "followed_ids"
	case ReactedPostsSet:
		return "reacted_post_ids"
	case CommentedPostsSet:
		return "commented_post_ids"
	default:
		return "reacted_comment_ids"
	}
}

func (s AccountSet) pick(a *db.Account) *db.IDSet {
	switch s {
	case FollowedSet:
		return &a.FollowedIDs
	case ReactedPostsSet:
		return &a.ReactedPostIDs
	case CommentedPostsSet:
		return &a.CommentedPostIDs
	default:
		return &a.ReactedCommentIDs
	}
}

// AccountRepository provides data access for the users collection.
type AccountRepository struct {
	*docstore.Collection[db.Account, *db.Account]
}

// FindByKeys returns accounts whose normalized username or email matches.
// Used for the query-before-write uniqueness check at sign-up.
func (r *AccountRepository) FindByKeys(ctx context.Context, usernameKey, emailKey string) ([]db.Account, error) {
	return r.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Expr("username_key = ? OR email_key = ?", usernameKey, emailKey),
		},
	})
}

// FindContaining returns accounts whose set holds id, e.g. the followers of
// an account or the reactors of a post.
func (r *AccountRepository) FindContaining(ctx context.Context, set AccountSet, id string) ([]db.Account, error) {
	return r.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Contains(set.column(), id)},
		OrderBy: []docstore.Order{{Field: "id"}},
	})
}

// AddToSet adds member to one of the account's sets; false if present.
func (r *AccountRepository) AddToSet(ctx context.Context, accountID string, set AccountSet, member string) (bool, error) {
	return addToSet(ctx, r.Collection, accountID, set.pick, member)
}

// RemoveFromSet removes member from one of the account's sets; false if absent.
func (r *AccountRepository) RemoveFromSet(ctx context.Context, accountID string, set AccountSet, member string) (bool, error) {
	return removeFromSet(ctx, r.Collection, accountID, set.pick, member)
}

func pickMedals(a *db.Account) *db.IDSet { return &a.Medals }

// AddMedal appends a medal id unless the account already holds it.
func (r *AccountRepository) AddMedal(ctx context.Context, accountID, medalID string) (bool, error) {
	return addToSet(ctx, r.Collection, accountID, pickMedals, medalID)
}
