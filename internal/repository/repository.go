package repository

import (
	"context"

	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/docstore"
)

// Collection names, kept backward compatible with the existing store.
const (
	CollectionAccounts = "users"
	CollectionPosts    = "posts"
	CollectionComments = "comments"
	CollectionWorkouts = "workouts"
)

// Repositories bundles the typed repositories sharing one store.
type Repositories struct {
	Accounts *AccountRepository
	Posts    *PostRepository
	Comments *CommentRepository
	Workouts *WorkoutRepository
}

// New creates every repository on top of the given document store.
func New(store *docstore.Store) *Repositories {
	return &Repositories{
		Accounts: &AccountRepository{docstore.NewCollection[db.Account](store, CollectionAccounts)},
		Posts:    &PostRepository{docstore.NewCollection[db.Post](store, CollectionPosts)},
		Comments: &CommentRepository{docstore.NewCollection[db.Comment](store, CollectionComments)},
		Workouts: &WorkoutRepository{docstore.NewCollection[db.Workout](store, CollectionWorkouts)},
	}
}

// addToSet adds member to the set picked from document id.
//
// Behavior:
//   - Runs inside a versioned Mutate, so concurrent adds never lose updates.
//   - Returns false without writing if member is already present.
func addToSet[T any, P docstore.DocPtr[T]](
	ctx context.Context,
	c *docstore.Collection[T, P],
	id string,
	pick func(P) *db.IDSet,
	member string,
) (bool, error) {
	var added bool
	_, err := c.Mutate(ctx, id, func(doc P) error {
		set := pick(doc)
		var changed bool
		*set, changed = db.AddID(*set, member)
		added = changed
		if !changed {
			return docstore.ErrNoChange
		}
		return nil
	})
	return added, err
}

// removeFromSet is the mirror of addToSet; false means member was absent.
func removeFromSet[T any, P docstore.DocPtr[T]](
	ctx context.Context,
	c *docstore.Collection[T, P],
	id string,
	pick func(P) *db.IDSet,
	member string,
) (bool, error) {
	var removed bool
	_, err := c.Mutate(ctx, id, func(doc P) error {
		set := pick(doc)
		var changed bool
		*set, changed = db.RemoveID(*set, member)
		removed = changed
		if !changed {
			return docstore.ErrNoChange
		}
		return nil
	})
	return removed, err
}
