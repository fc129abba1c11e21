package social

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oggyb/fitsocial/internal/db"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
)

// AddComment writes a comment on a post with a snapshot of the author.
//
// Behavior:
//   - Marks participation on both sides: postId in the account's
//     commentedPostIds, the account in the post's commentingAccountIds.
//     Both are idempotent, so a second comment on the same post is fine.
//   - If marking fails the comment is removed again and the error returned.
//   - Then asks the medal checker about the first-comment medal; a failure
//     there is logged only.
func (s *Service) AddComment(ctx context.Context, sess session.Session, postID, text string) (*db.Comment, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	text, err := validateText(text)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	author, err := s.accounts.Get(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}

	c := &db.Comment{
		ID:                      uuid.NewString(),
		AuthorID:                author.ID,
		PostID:                  postID,
		AuthorFirstName:         author.FirstName,
		AuthorUsername:          author.Username,
		AuthorProfilePictureRef: author.ProfilePictureRef,
		Text:                    text,
		ReactingAccountIDs:      db.IDSet{},
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}

	if err := s.markParticipation(ctx, author.ID, postID); err != nil {
		s.log.Error("failed to mark comment participation, removing comment", "comment_id", c.ID, "err", err)
		if delErr := s.comments.Delete(ctx, c.ID); delErr != nil {
			s.log.Error("failed to remove comment", "comment_id", c.ID, "err", delErr)
		}
		_ = s.retractParticipation(ctx, author.ID, postID)
		return nil, err
	}

	if s.medals != nil {
		if _, err := s.medals.CheckFirstCommentMedal(ctx, author.ID); err != nil {
			s.log.Warn("first comment medal check failed", "account_id", author.ID, "err", err)
		}
	}
	return c, nil
}

func (s *Service) markParticipation(ctx context.Context, accountID, postID string) error {
	if _, err := s.accounts.AddToSet(ctx, accountID, repository.CommentedPostsSet, postID); err != nil {
		return err
	}
	_, err := s.posts.AddToSet(ctx, postID, repository.PostCommentersSet, accountID)
	return err
}

// retractParticipation drops both participation markers once the account
// has no comment left on the post.
func (s *Service) retractParticipation(ctx context.Context, accountID, postID string) error {
	n, err := s.comments.CountByAuthorOnPost(ctx, accountID, postID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, errA := s.accounts.RemoveFromSet(ctx, accountID, repository.CommentedPostsSet, postID)
	_, errP := s.posts.RemoveFromSet(ctx, postID, repository.PostCommentersSet, accountID)
	return errors.Join(ignoreNotFound(errA), ignoreNotFound(errP))
}

// DeleteComment removes one of the session account's comments.
//
// Behavior:
//   - Only the author may delete (Forbidden otherwise).
//   - Scrubs the comment id from every reactor's reactedCommentIds.
//   - Retracts the participation markers if it was the author's last
//     comment on that post.
func (s *Service) DeleteComment(ctx context.Context, sess session.Session, commentID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	c, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != sess.AccountID {
		return svcErr.Forbidden("only the author can delete a comment")
	}

	if _, err := s.purgeComment(ctx, c.ID); err != nil {
		return err
	}
	if err := s.retractParticipation(ctx, c.AuthorID, c.PostID); err != nil {
		s.log.Warn("failed to retract comment participation", "comment_id", c.ID, "err", err)
		return err
	}
	return nil
}

// purgeComment scrubs reactors first and deletes the comment last, so a
// failed run leaves the comment in place to be retried. Returns how many
// accounts were scrubbed.
func (s *Service) purgeComment(ctx context.Context, commentID string) (int, error) {
	reactors, err := s.accounts.FindContaining(ctx, repository.ReactedCommentsSet, commentID)
	if err != nil {
		return 0, err
	}
	var errs []error
	scrubbed := 0
	for _, a := range reactors {
		removed, err := s.accounts.RemoveFromSet(ctx, a.ID, repository.ReactedCommentsSet, commentID)
		if err = ignoreNotFound(err); err != nil {
			errs = append(errs, err)
			continue
		}
		if removed {
			scrubbed++
		}
	}
	if err := errors.Join(errs...); err != nil {
		return scrubbed, err
	}
	if err := ignoreNotFound(s.comments.Delete(ctx, commentID)); err != nil {
		return scrubbed, err
	}
	return scrubbed, nil
}

// ListComments returns a post's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, postID string) ([]db.Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}
