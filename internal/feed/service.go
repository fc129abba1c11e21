// Package feed assembles the posts a viewer gets to see.
package feed

import (
	"context"
	"log/slog"

	"github.com/oggyb/fitsocial/internal/app"
	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
	"github.com/oggyb/fitsocial/internal/utils/pagination"
)

const (
	// DefaultPageSize is used when neither the caller nor config sets one.
	DefaultPageSize = 20
	// MaxPageSize caps a requested page.
	MaxPageSize = 100
)

// Item is one post as the viewer sees it.
type Item struct {
	Post          db.Post
	ViewerReacted bool
	ReactionCount int
	CommentCount  int
}

// Feed is one page. NoPosts marks an empty result; it is not an error.
type Feed struct {
	Items         []Item
	NextPageToken string
	NoPosts       bool
}

type Service struct {
	accounts *repository.AccountRepository
	posts    *repository.PostRepository
	pageSize int
	log      *slog.Logger
}

// NewService creates the feed service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	pageSize := appCtx.Config.Feed.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		accounts: appCtx.Repos.Accounts,
		posts:    appCtx.Repos.Posts,
		pageSize: pageSize,
		log:      appCtx.Logger.With("component", "feed"),
	}
}

// VisibleAuthors is the viewer's followed set plus the viewer.
func VisibleAuthors(viewer *db.Account) []string {
	out := make([]string, 0, len(viewer.FollowedIDs)+1)
	out = append(out, viewer.ID)
	for _, id := range viewer.FollowedIDs {
		if id != viewer.ID {
			out = append(out, id)
		}
	}
	return out
}

// GetFeed returns posts by the viewer and the accounts they follow.
//
// Behavior:
//   - Ordered by createdAt descending; equal timestamps by id ascending.
//   - Cursor-paginated: pass the previous NextPageToken to continue.
//   - limit <= 0 uses the configured page size.
//
// Example:
//
//	svc.GetFeed(ctx, sess, "", 20)
func (s *Service) GetFeed(ctx context.Context, sess session.Session, pageToken string, limit int) (*Feed, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit, s.pageSize, MaxPageSize)

	viewer, err := s.accounts.Get(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	authors := VisibleAuthors(viewer)

	posts, next, err := s.posts.ListByAuthors(ctx, authors, &pageToken, limit)
	if err != nil {
		return nil, err
	}

	feed := &Feed{Items: make([]Item, 0, len(posts))}
	for _, p := range posts {
		feed.Items = append(feed.Items, Item{
			Post:          p,
			ViewerReacted: db.HasID(p.ReactingAccountIDs, viewer.ID),
			ReactionCount: len(p.ReactingAccountIDs),
			CommentCount:  len(p.CommentingAccountIDs),
		})
	}
	if next != nil {
		feed.NextPageToken = *next
	}
	feed.NoPosts = len(feed.Items) == 0

	s.log.Debug("feed assembled", "viewer", viewer.ID, "authors", len(authors), "items", len(feed.Items))
	return feed, nil
}
