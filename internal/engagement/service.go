// Package engagement turns finished workouts into levels and medals.
package engagement

import (
	"context"
	"log/slog"

	"github.com/oggyb/fitsocial/internal/app"
	"github.com/oggyb/fitsocial/internal/cache"
	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/docstore"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
)

// Service owns the gamification state of accounts and their workouts.
type Service struct {
	accounts *repository.AccountRepository
	workouts *repository.WorkoutRepository
	cache    *cache.RedisCache
	log      *slog.Logger
}

// NewService creates the engagement service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		accounts: appCtx.Repos.Accounts,
		workouts: appCtx.Repos.Workouts,
		cache:    appCtx.RedisCache,
		log:      appCtx.Logger.With("component", "engagement"),
	}
}

// CompletionOutcome describes what one finished workout changed.
type CompletionOutcome struct {
	CompletedWorkouts int
	LeveledUp         bool
	Level             int
	MedalGranted      string
}

// RecordWorkoutCompletion counts one finished workout for the account.
//
// Behavior:
//   - Increments completedWorkoutCount inside a versioned mutate.
//   - When the new count is exactly a threshold, levels up once and grants
//     that threshold's medal. Any other count changes nothing else.
func (s *Service) RecordWorkoutCompletion(ctx context.Context, accountID string) (*CompletionOutcome, error) {
	acc, err := s.accounts.Mutate(ctx, accountID, func(a *db.Account) error {
		a.CompletedWorkoutCount++
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &CompletionOutcome{CompletedWorkouts: acc.CompletedWorkoutCount, Level: acc.Level}
	th, ok := ThresholdFor(acc.CompletedWorkoutCount)
	if !ok {
		return out, nil
	}

	level, leveled, err := s.LevelUp(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out.Level, out.LeveledUp = level, leveled

	granted, err := s.GrantMedal(ctx, accountID, th.Medal)
	if err != nil {
		return nil, err
	}
	if granted {
		out.MedalGranted = th.Medal
	}

	s.log.Info("threshold reached", "account_id", accountID, "count", out.CompletedWorkouts, "level", out.Level, "medal", out.MedalGranted)
	return out, nil
}

// LevelUp raises the level by one, capped at MaxLevel, and raises the
// pending level-up flag. Returns the resulting level and whether it moved.
func (s *Service) LevelUp(ctx context.Context, accountID string) (int, bool, error) {
	var leveled bool
	acc, err := s.accounts.Mutate(ctx, accountID, func(a *db.Account) error {
		leveled = false
		if a.Level < InitialLevel {
			a.Level = InitialLevel
		}
		if a.Level >= MaxLevel {
			return docstore.ErrNoChange
		}
		a.Level++
		leveled = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	if leveled {
		if err := s.cache.SetFlag(ctx, s.cache.KeyForLevelUp(accountID), cache.LevelUpTTL); err != nil {
			// the level is persisted; only the animation is lost
			s.log.Warn("failed to set level-up flag", "account_id", accountID, "err", err)
		}
	}
	return acc.Level, leveled, nil
}

// GrantMedal appends medalID once. Returns false if the account already
// had it, so calling it twice never duplicates a medal.
func (s *Service) GrantMedal(ctx context.Context, accountID, medalID string) (bool, error) {
	return s.accounts.AddMedal(ctx, accountID, medalID)
}

// HasMedal is for callers that want to check before granting.
func (s *Service) HasMedal(ctx context.Context, accountID, medalID string) (bool, error) {
	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return false, err
	}
	return db.HasID(acc.Medals, medalID), nil
}

// CheckFirstCommentMedal grants the first-comment medal if missing.
func (s *Service) CheckFirstCommentMedal(ctx context.Context, accountID string) (bool, error) {
	granted, err := s.GrantMedal(ctx, accountID, MedalFirstComment)
	if err == nil && granted {
		s.log.Info("medal granted", "account_id", accountID, "medal", MedalFirstComment)
	}
	return granted, err
}

// ConsumeLevelUpFlag reports and clears the pending level-up animation.
func (s *Service) ConsumeLevelUpFlag(ctx context.Context, sess session.Session) (bool, error) {
	if err := sess.Require(); err != nil {
		return false, err
	}
	return s.cache.ConsumeFlag(ctx, s.cache.KeyForLevelUp(sess.AccountID))
}
