package repository

import (
	"context"

	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/docstore"
)

// WorkoutRepository provides data access for the workouts collection.
type WorkoutRepository struct {
	*docstore.Collection[db.Workout, *db.Workout]
}

// ListByAccount returns an account's workouts, most recent first.
func (r *WorkoutRepository) ListByAccount(ctx context.Context, accountID string) ([]db.Workout, error) {
	return r.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("users_id", accountID)},
		OrderBy: []docstore.Order{{Field: "date", Desc: true}, {Field: "id"}},
	})
}

// DeleteByAccount removes every workout of an account.
func (r *WorkoutRepository) DeleteByAccount(ctx context.Context, accountID string) (int, error) {
	ids, err := r.DeleteWhere(ctx, docstore.Eq("users_id", accountID))
	return len(ids), err
}
