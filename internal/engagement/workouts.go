package engagement

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/oggyb/fitsocial/internal/db"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/session"
)

// WorkoutPlan is what the user sets up before starting.
type WorkoutPlan struct {
	Type            string
	Date            time.Time
	SeriesPlanned   int
	WorkTimeSeconds int
	RestTimeSeconds int
}

func (p WorkoutPlan) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.SeriesPlanned, validation.Required, validation.Min(1)),
		validation.Field(&p.WorkTimeSeconds, validation.Required, validation.Min(1)),
		validation.Field(&p.RestTimeSeconds, validation.Min(0)),
	)
}

// WorkoutResult is what was actually done.
type WorkoutResult struct {
	CompletedDurationSeconds int
	CompletedSeries          int
	Calories                 float64
}

func (r WorkoutResult) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CompletedDurationSeconds, validation.Min(0)),
		validation.Field(&r.CompletedSeries, validation.Min(0)),
		validation.Field(&r.Calories, validation.Min(0.0)),
	)
}

// CreateWorkout stores a new, unfinished workout for the session account.
func (s *Service) CreateWorkout(ctx context.Context, sess session.Session, plan WorkoutPlan) (*db.Workout, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, svcErr.FromValidation(err)
	}
	if plan.Date.IsZero() {
		plan.Date = time.Now()
	}
	// a token can outlive its account
	if _, err := s.accounts.Get(ctx, sess.AccountID); err != nil {
		return nil, err
	}

	w := &db.Workout{
		ID:              uuid.NewString(),
		AccountID:       sess.AccountID,
		Type:            plan.Type,
		Date:            plan.Date.UTC(),
		SeriesPlanned:   plan.SeriesPlanned,
		WorkTimeSeconds: plan.WorkTimeSeconds,
		RestTimeSeconds: plan.RestTimeSeconds,
	}
	if err := s.workouts.Create(ctx, w); err != nil {
		return nil, err
	}
	s.log.Debug("workout created", "account_id", sess.AccountID, "workout_id", w.ID)
	return w, nil
}

// FinishWorkout records the result and counts the completion.
//
// Behavior:
//   - Only the owner may finish a workout (Forbidden otherwise).
//   - A workout finishes once; a second call fails with InvalidState.
//   - On success the account's completion count moves, possibly levelling up.
func (s *Service) FinishWorkout(ctx context.Context, sess session.Session, workoutID string, res WorkoutResult) (*db.Workout, *CompletionOutcome, error) {
	if err := sess.Require(); err != nil {
		return nil, nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, nil, svcErr.FromValidation(err)
	}

	w, err := s.workouts.Mutate(ctx, workoutID, func(w *db.Workout) error {
		if w.AccountID != sess.AccountID {
			return svcErr.Forbidden("workout belongs to another account")
		}
		if w.IsFinished {
			return svcErr.InvalidState("workout is already finished")
		}
		w.IsFinished = true
		w.CompletedDurationSeconds = res.CompletedDurationSeconds
		w.CompletedSeries = res.CompletedSeries
		w.Calories = res.Calories
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	outcome, err := s.RecordWorkoutCompletion(ctx, sess.AccountID)
	if err != nil {
		s.log.Error("failed to record completion", "account_id", sess.AccountID, "workout_id", workoutID, "err", err)
		return w, nil, err
	}
	return w, outcome, nil
}

// ListWorkouts returns the session account's workouts, newest first.
func (s *Service) ListWorkouts(ctx context.Context, sess session.Session) ([]db.Workout, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	return s.workouts.ListByAccount(ctx, sess.AccountID)
}

// DeleteWorkout removes one of the session account's workouts. The
// completion count is history and is not rolled back.
func (s *Service) DeleteWorkout(ctx context.Context, sess session.Session, workoutID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	w, err := s.workouts.Get(ctx, workoutID)
	if err != nil {
		return err
	}
	if w.AccountID != sess.AccountID {
		return svcErr.Forbidden("workout belongs to another account")
	}
	return s.workouts.Delete(ctx, workoutID)
}
