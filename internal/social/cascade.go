package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/oggyb/fitsocial/internal/db"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
)

// Cascade step names, in execution order.
const (
	StepScrubFollowers = "scrub_followers"
	StepDeleteComments = "delete_comments"
	StepDeletePosts    = "delete_posts"
	StepScrubReactions = "scrub_reactions"
	StepDeleteWorkouts = "delete_workouts"
	StepDeleteBlobs    = "delete_blobs"
	StepDeleteIdentity = "delete_identity"
	StepDeleteAccount  = "delete_account"
)

// StepResult is the outcome of one cascade step.
type StepResult struct {
	Name     string
	Affected int
	Err      error
}

// CascadeReport collects every step of an account removal.
type CascadeReport struct {
	AccountID string
	Steps     []StepResult
}

// Err joins the errors of all failed steps; nil when everything succeeded.
func (r *CascadeReport) Err() error {
	var errs []error
	for _, st := range r.Steps {
		if st.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", st.Name, st.Err))
		}
	}
	return errors.Join(errs...)
}

func (r *CascadeReport) OK() bool { return r.Err() == nil }

// Step returns the result for name, if that step ran.
func (r *CascadeReport) Step(name string) (StepResult, bool) {
	for _, st := range r.Steps {
		if st.Name == name {
			return st, true
		}
	}
	return StepResult{}, false
}

type cascadeStep struct {
	name string
	run  func(ctx context.Context, accountID string) (int, error)
}

// steps lists the cascade for one account. acc is nil when repairing an
// account whose document is already gone.
func (s *Service) steps(acc *db.Account) []cascadeStep {
	return []cascadeStep{
		{StepScrubFollowers, s.scrubFollowers},
		{StepDeleteComments, s.deleteCommentsBy},
		{StepDeletePosts, s.deletePostsBy},
		{StepScrubReactions, s.scrubReactionsBy},
		{StepDeleteWorkouts, s.workouts.DeleteByAccount},
		{StepDeleteBlobs, func(ctx context.Context, _ string) (int, error) {
			if acc == nil || acc.ProfilePictureRef == "" {
				return 0, nil
			}
			if err := s.blobs.Delete(ctx, acc.ProfilePictureRef); err != nil {
				return 0, err
			}
			return 1, nil
		}},
		{StepDeleteIdentity, func(ctx context.Context, id string) (int, error) {
			deleted, err := s.identities.Delete(ctx, id)
			if deleted {
				return 1, err
			}
			return 0, err
		}},
	}
}

func (s *Service) runSteps(ctx context.Context, accountID string, steps []cascadeStep) *CascadeReport {
	report := &CascadeReport{AccountID: accountID}
	for _, st := range steps {
		n, err := st.run(ctx, accountID)
		if err != nil {
			s.log.Error("cascade step failed", "account_id", accountID, "step", st.name, "err", err)
		} else {
			s.log.Debug("cascade step done", "account_id", accountID, "step", st.name, "affected", n)
		}
		report.Steps = append(report.Steps, StepResult{Name: st.name, Affected: n, Err: err})
	}
	return report
}

// DeleteAccount removes the session account and everything it owns.
//
// Behavior:
//   - Runs the named steps in order; each is idempotent.
//   - A failed step is logged and reported; later steps and the final
//     account deletion still run.
//   - Leftovers of failed steps can be cleaned with RepairAccountDeletion.
func (s *Service) DeleteAccount(ctx context.Context, sess session.Session) (*CascadeReport, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	acc, err := s.accounts.Get(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}

	steps := append(s.steps(acc), cascadeStep{StepDeleteAccount, func(ctx context.Context, id string) (int, error) {
		if err := ignoreNotFound(s.accounts.Delete(ctx, id)); err != nil {
			return 0, err
		}
		return 1, nil
	}})

	report := s.runSteps(ctx, acc.ID, steps)
	if err := report.Err(); err != nil {
		s.log.Warn("account deleted with failed steps", "account_id", acc.ID, "err", err)
	} else {
		s.log.Info("account deleted", "account_id", acc.ID)
	}
	return report, nil
}

// RepairAccountDeletion re-runs every cleanup step for an account whose
// document is already gone. It refuses to touch a live account.
func (s *Service) RepairAccountDeletion(ctx context.Context, sess session.Session, accountID string) (*CascadeReport, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, svcErr.ValidationFailed("account_id", "account_id is required")
	}
	_, err := s.accounts.Get(ctx, accountID)
	switch {
	case err == nil:
		return nil, svcErr.InvalidState("account still exists, delete it instead")
	case !errors.Is(err, svcErr.ErrNotFound):
		return nil, err
	}

	report := s.runSteps(ctx, accountID, s.steps(nil))
	s.log.Info("account deletion repaired", "account_id", accountID, "ok", report.OK())
	return report, nil
}

func (s *Service) scrubFollowers(ctx context.Context, accountID string) (int, error) {
	followers, err := s.accounts.FindContaining(ctx, repository.FollowedSet, accountID)
	if err != nil {
		return 0, err
	}
	n := 0
	var errs []error
	for _, f := range followers {
		removed, err := s.accounts.RemoveFromSet(ctx, f.ID, repository.FollowedSet, accountID)
		if err = ignoreNotFound(err); err != nil {
			errs = append(errs, err)
			continue
		}
		if removed {
			n++
		}
	}
	return n, errors.Join(errs...)
}

func (s *Service) deleteCommentsBy(ctx context.Context, accountID string) (int, error) {
	comments, err := s.comments.ListByAuthor(ctx, accountID)
	if err != nil {
		return 0, err
	}
	n := 0
	var errs []error
	posts := map[string]struct{}{}
	for _, c := range comments {
		if _, err := s.purgeComment(ctx, c.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		posts[c.PostID] = struct{}{}
		n++
	}
	for postID := range posts {
		if err := s.retractParticipation(ctx, accountID, postID); err != nil {
			errs = append(errs, err)
		}
	}
	return n, errors.Join(errs...)
}

func (s *Service) deletePostsBy(ctx context.Context, accountID string) (int, error) {
	posts, err := s.posts.ListByAuthor(ctx, accountID)
	if err != nil {
		return 0, err
	}
	n := 0
	var errs []error
	for i := range posts {
		if err := s.purgePost(ctx, &posts[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// scrubReactionsBy removes the account from every remaining post and
// comment it reacted to or commented on.
func (s *Service) scrubReactionsBy(ctx context.Context, accountID string) (int, error) {
	n := 0
	var errs []error

	for _, set := range []repository.PostSet{repository.PostReactionsSet, repository.PostCommentersSet} {
		posts, err := s.posts.FindContaining(ctx, set, accountID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, p := range posts {
			removed, err := s.posts.RemoveFromSet(ctx, p.ID, set, accountID)
			if err = ignoreNotFound(err); err != nil {
				errs = append(errs, err)
				continue
			}
			if removed {
				n++
				if set == repository.PostReactionsSet {
					s.adjustReactionCount(ctx, p.ID, -1)
				}
			}
		}
	}

	comments, err := s.comments.FindReactedBy(ctx, accountID)
	if err != nil {
		errs = append(errs, err)
	}
	for _, c := range comments {
		removed, err := s.comments.RemoveReaction(ctx, c.ID, accountID)
		if err = ignoreNotFound(err); err != nil {
			errs = append(errs, err)
			continue
		}
		if removed {
			n++
		}
	}
	return n, errors.Join(errs...)
}
