package social

import (
	"context"

	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
)

// Follow adds targetID to the session account's followed set.
//
// Behavior:
//   - Following yourself is a validation error.
//   - The target must exist.
//   - A repeated follow reports AlreadyRelated and changes nothing.
func (s *Service) Follow(ctx context.Context, sess session.Session, targetID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	if targetID == "" {
		return svcErr.ValidationFailed("target_id", "target_id is required")
	}
	if targetID == sess.AccountID {
		return svcErr.ValidationFailed("target_id", "cannot follow yourself")
	}
	if _, err := s.accounts.Get(ctx, targetID); err != nil {
		return err
	}

	added, err := s.accounts.AddToSet(ctx, sess.AccountID, repository.FollowedSet, targetID)
	if err != nil {
		return err
	}
	if !added {
		return svcErr.AlreadyRelated("follow", targetID)
	}
	s.log.Debug("followed", "account_id", sess.AccountID, "target_id", targetID)
	return nil
}

// Unfollow removes targetID; NotRelated if it was not followed.
func (s *Service) Unfollow(ctx context.Context, sess session.Session, targetID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	removed, err := s.accounts.RemoveFromSet(ctx, sess.AccountID, repository.FollowedSet, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return svcErr.NotRelated("follow", targetID)
	}
	s.log.Debug("unfollowed", "account_id", sess.AccountID, "target_id", targetID)
	return nil
}
