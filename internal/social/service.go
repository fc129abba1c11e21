// Package social owns the relations between accounts and content: follows,
// reactions, comments, posts, and the cascade that removes an account.
package social

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/oggyb/fitsocial/internal/app"
	"github.com/oggyb/fitsocial/internal/blobstore"
	"github.com/oggyb/fitsocial/internal/cache"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
)

// MaxTextLength bounds post and comment text, in characters.
const MaxTextLength = 200

// MedalChecker is notified after a comment is written.
type MedalChecker interface {
	CheckFirstCommentMedal(ctx context.Context, accountID string) (bool, error)
}

// Service implements the social graph operations.
type Service struct {
	accounts   *repository.AccountRepository
	posts      *repository.PostRepository
	comments   *repository.CommentRepository
	workouts   *repository.WorkoutRepository
	blobs      blobstore.Store
	identities session.IdentityProvider
	cache      *cache.RedisCache
	medals     MedalChecker
	log        *slog.Logger
}

// NewService creates the social service with dependencies from AppContext.
// medals may be nil.
func NewService(appCtx *app.AppContext, medals MedalChecker) *Service {
	return &Service{
		accounts:   appCtx.Repos.Accounts,
		posts:      appCtx.Repos.Posts,
		comments:   appCtx.Repos.Comments,
		workouts:   appCtx.Repos.Workouts,
		blobs:      appCtx.Blobs,
		identities: appCtx.Identities,
		cache:      appCtx.RedisCache,
		medals:     medals,
		log:        appCtx.Logger.With("component", "social"),
	}
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	err := validation.Validate(text, validation.Required, validation.RuneLength(1, MaxTextLength))
	if err != nil {
		return "", svcErr.ValidationFailed("text", "text: "+err.Error())
	}
	return text, nil
}

// ignoreNotFound treats a vanished document as already cleaned up.
func ignoreNotFound(err error) error {
	if errors.Is(err, svcErr.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) reactionCountKey(postID string) string {
	return s.cache.KeyForReactionCount("post", postID)
}

// adjustReactionCount keeps a cached counter in step. A failure only costs a
// stale count until the TTL expires.
func (s *Service) adjustReactionCount(ctx context.Context, postID string, delta int64) {
	if err := s.cache.AdjustCount(ctx, s.reactionCountKey(postID), delta); err != nil {
		s.log.Warn("failed to adjust reaction count", "post_id", postID, "err", err)
	}
}
