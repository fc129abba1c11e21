package social

import (
	"context"

	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
)

// ReactToPost records the session account's reaction on a post.
//
// Behavior:
//   - The post's reacting set decides AlreadyRelated.
//   - The account's reactedPostIds mirror is added after; if that fails the
//     post side is rolled back so both sides agree.
//   - A cached reaction count is bumped on success.
func (s *Service) ReactToPost(ctx context.Context, sess session.Session, postID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	added, err := s.posts.AddToSet(ctx, postID, repository.PostReactionsSet, sess.AccountID)
	if err != nil {
		return err
	}
	if !added {
		return svcErr.AlreadyRelated("reaction", postID)
	}

	if _, err := s.accounts.AddToSet(ctx, sess.AccountID, repository.ReactedPostsSet, postID); err != nil {
		s.log.Error("reaction mirror failed, rolling back", "account_id", sess.AccountID, "post_id", postID, "err", err)
		if _, rbErr := s.posts.RemoveFromSet(ctx, postID, repository.PostReactionsSet, sess.AccountID); rbErr != nil {
			s.log.Error("rollback failed", "post_id", postID, "err", rbErr)
		}
		return err
	}

	s.adjustReactionCount(ctx, postID, 1)
	return nil
}

// RemoveReactionFromPost is the inverse of ReactToPost; NotRelated if the
// account had not reacted.
func (s *Service) RemoveReactionFromPost(ctx context.Context, sess session.Session, postID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	removed, err := s.posts.RemoveFromSet(ctx, postID, repository.PostReactionsSet, sess.AccountID)
	if err != nil {
		return err
	}
	if !removed {
		return svcErr.NotRelated("reaction", postID)
	}

	if _, err := s.accounts.RemoveFromSet(ctx, sess.AccountID, repository.ReactedPostsSet, postID); err != nil {
		s.log.Error("reaction mirror failed, rolling back", "account_id", sess.AccountID, "post_id", postID, "err", err)
		if _, rbErr := s.posts.AddToSet(ctx, postID, repository.PostReactionsSet, sess.AccountID); rbErr != nil {
			s.log.Error("rollback failed", "post_id", postID, "err", rbErr)
		}
		return err
	}

	s.adjustReactionCount(ctx, postID, -1)
	return nil
}

// ReactToComment records a reaction on a comment, mirrored on the account.
func (s *Service) ReactToComment(ctx context.Context, sess session.Session, commentID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	added, err := s.comments.AddReaction(ctx, commentID, sess.AccountID)
	if err != nil {
		return err
	}
	if !added {
		return svcErr.AlreadyRelated("reaction", commentID)
	}

	if _, err := s.accounts.AddToSet(ctx, sess.AccountID, repository.ReactedCommentsSet, commentID); err != nil {
		s.log.Error("reaction mirror failed, rolling back", "account_id", sess.AccountID, "comment_id", commentID, "err", err)
		if _, rbErr := s.comments.RemoveReaction(ctx, commentID, sess.AccountID); rbErr != nil {
			s.log.Error("rollback failed", "comment_id", commentID, "err", rbErr)
		}
		return err
	}
	return nil
}

// RemoveReactionFromComment is the inverse of ReactToComment.
func (s *Service) RemoveReactionFromComment(ctx context.Context, sess session.Session, commentID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	removed, err := s.comments.RemoveReaction(ctx, commentID, sess.AccountID)
	if err != nil {
		return err
	}
	if !removed {
		return svcErr.NotRelated("reaction", commentID)
	}

	if _, err := s.accounts.RemoveFromSet(ctx, sess.AccountID, repository.ReactedCommentsSet, commentID); err != nil {
		s.log.Error("reaction mirror failed, rolling back", "account_id", sess.AccountID, "comment_id", commentID, "err", err)
		if _, rbErr := s.comments.AddReaction(ctx, commentID, sess.AccountID); rbErr != nil {
			s.log.Error("rollback failed", "comment_id", commentID, "err", rbErr)
		}
		return err
	}
	return nil
}

// CountPostReactions returns how many accounts reacted to a post.
// Cache-first strategy:
//  1. Attempts to read from Redis (reactions:count:post:{id}).
//  2. On a miss or a Redis error, falls back to the post document.
//  3. On a document read, caches the count with a 1h TTL.
func (s *Service) CountPostReactions(ctx context.Context, postID string) (int64, error) {
	key := s.reactionCountKey(postID)

	// try cache first
	n, hit, err := s.cache.GetCount(ctx, key)
	if err != nil {
		s.log.Warn("reaction count cache read failed", "post_id", postID, "err", err)
	} else if hit {
		return n, nil
	}

	// fallback: document
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return 0, err
	}
	count := int64(len(post.ReactingAccountIDs))

	_ = s.cache.SetCount(ctx, key, count)
	return count, nil
}
