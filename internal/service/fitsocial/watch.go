package fitsocial

import (
	"context"
	"errors"

	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/docstore"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/repository"
)

const kindSnapshot = "snapshot"

var errFeedClosed = errors.New("change feed closed")

// WatchDocument streams a snapshot of one document followed by its changes.
// The stream ends after a delete or when the client goes away.
func (s *Service) WatchDocument(req *WatchDocumentRequest, stream WatchDocumentServer) error {
	ctx := stream.Context()
	sess := caller(ctx)
	if err := sess.Require(); err != nil {
		return svcErr.Map(err)
	}
	if req.ID == "" {
		return svcErr.InvalidArgument("id is required")
	}

	s.log.Debug("WatchDocument called", "collection", req.Collection, "id", req.ID, "account_id", sess.AccountID)

	var err error
	switch req.Collection {
	case repository.CollectionAccounts:
		if req.ID != sess.AccountID {
			return svcErr.Map(svcErr.Forbidden("accounts can only watch their own document"))
		}
		err = watch(ctx, s.appCtx.Repos.Accounts.Collection, req.ID, stream, func(kind, id string, a *db.Account) *DocumentChange {
			m := &DocumentChange{Kind: kind, ID: id}
			if a != nil {
				v := toAccountView(ctx, s.appCtx.Blobs, a, 0, true)
				m.Account = &v
			}
			return m
		})
	case repository.CollectionPosts:
		err = watch(ctx, s.appCtx.Repos.Posts.Collection, req.ID, stream, func(kind, id string, p *db.Post) *DocumentChange {
			m := &DocumentChange{Kind: kind, ID: id}
			if p != nil {
				v := toPostView(p, sess.AccountID)
				m.Post = &v
			}
			return m
		})
	case repository.CollectionComments:
		err = watch(ctx, s.appCtx.Repos.Comments.Collection, req.ID, stream, func(kind, id string, c *db.Comment) *DocumentChange {
			m := &DocumentChange{Kind: kind, ID: id}
			if c != nil {
				v := toCommentView(c)
				m.Comment = &v
			}
			return m
		})
	default:
		err = svcErr.InvalidArgument("collection must be users, posts or comments")
	}
	if err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// watch subscribes before reading the snapshot so no change between the
// two is lost. Sends happen only on the calling goroutine.
func watch[T any, P docstore.DocPtr[T]](
	ctx context.Context,
	coll *docstore.Collection[T, P],
	id string,
	stream WatchDocumentServer,
	render func(kind, id string, doc *T) *DocumentChange,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := make(chan docstore.Change[T], 16)
	sub, err := coll.SubscribeDoc(ctx, id, func(c docstore.Change[T]) {
		select {
		case changes <- c:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer sub.Close()

	doc, err := coll.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := stream.Send(render(kindSnapshot, id, doc)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			return svcErr.Unavailable("watch", errFeedClosed)
		case c := <-changes:
			if err := stream.Send(render(string(c.Kind), c.ID, c.Doc)); err != nil {
				return err
			}
			if c.Kind == docstore.ChangeDeleted {
				return nil
			}
		}
	}
}
