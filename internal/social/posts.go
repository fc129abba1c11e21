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

// CreatePost publishes a post for the session account. photo is optional;
// when present it is uploaded first and the post keeps its locator.
func (s *Service) CreatePost(ctx context.Context, sess session.Session, text string, photo []byte) (*db.Post, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	text, err := validateText(text)
	if err != nil {
		return nil, err
	}
	author, err := s.accounts.Get(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}

	var photoRef string
	if len(photo) > 0 {
		photoRef, err = s.blobs.Put(ctx, author.ID, photo)
		if err != nil {
			return nil, err
		}
	}

	p := &db.Post{
		ID:                      uuid.NewString(),
		AuthorID:                author.ID,
		AuthorFirstName:         author.FirstName,
		AuthorUsername:          author.Username,
		AuthorProfilePictureRef: author.ProfilePictureRef,
		Text:                    text,
		PhotoRef:                photoRef,
		ReactingAccountIDs:      db.IDSet{},
		CommentingAccountIDs:    db.IDSet{},
	}
	if err := s.posts.Create(ctx, p); err != nil {
		if photoRef != "" {
			s.deleteBlob(ctx, photoRef)
		}
		return nil, err
	}
	s.log.Debug("post created", "account_id", author.ID, "post_id", p.ID)
	return p, nil
}

// DeletePost removes one of the session account's posts and everything
// hanging off it.
func (s *Service) DeletePost(ctx context.Context, sess session.Session, postID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != sess.AccountID {
		return svcErr.Forbidden("only the author can delete a post")
	}
	return s.purgePost(ctx, p)
}

// purgePost deletes a post's comments, scrubs every account referencing
// the post, then deletes the post itself and its photo. References are
// found by query, so running it again after a partial failure is safe.
func (s *Service) purgePost(ctx context.Context, p *db.Post) error {
	var errs []error

	comments, err := s.comments.ListByPost(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if _, err := s.purgeComment(ctx, c.ID); err != nil {
			errs = append(errs, err)
		}
	}

	for _, set := range []repository.AccountSet{repository.ReactedPostsSet, repository.CommentedPostsSet} {
		holders, err := s.accounts.FindContaining(ctx, set, p.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, a := range holders {
			if _, err := s.accounts.RemoveFromSet(ctx, a.ID, set, p.ID); ignoreNotFound(err) != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := ignoreNotFound(s.posts.Delete(ctx, p.ID)); err != nil {
		return err
	}
	if p.PhotoRef != "" {
		s.deleteBlob(ctx, p.PhotoRef)
	}
	if err := s.cache.Del(ctx, s.reactionCountKey(p.ID)); err != nil {
		s.log.Warn("failed to drop cached reaction count", "post_id", p.ID, "err", err)
	}
	return nil
}

// deleteBlob is best-effort: an orphaned image costs storage, not
// correctness.
func (s *Service) deleteBlob(ctx context.Context, locator string) {
	if err := s.blobs.Delete(ctx, locator); err != nil {
		s.log.Warn("failed to delete blob", "locator", locator, "err", err)
	}
}
