package docstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/docstore"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/logger"
	"github.com/oggyb/fitsocial/internal/testutil"
)

func setupPosts(t *testing.T, retries int) *docstore.Collection[db.Post, *db.Post] {
	t.Helper()
	rc, _ := testutil.NewRedis(t)
	store := docstore.New(testutil.NewDB(t), rc, logger.Discard(), docstore.Options{
		Timeout:    2 * time.Second,
		MaxRetries: retries,
	})
	return docstore.NewCollection[db.Post](store, "posts")
}

func newPost(id, author string, created time.Time) *db.Post {
	return &db.Post{
		ID:                   id,
		AuthorID:             author,
		Text:                 "text " + id,
		ReactingAccountIDs:   db.IDSet{},
		CommentingAccountIDs: db.IDSet{},
		CreatedAt:            created,
	}
}

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	posts := setupPosts(t, 5)

	_, err := posts.Get(ctx, "missing")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))
	err = posts.Create(ctx, newPost("p1", "u1", time.Now()))
	assert.ErrorIs(t, err, svcErr.ErrAlreadyExists)

	got, err := posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.AuthorID)
	assert.NotNil(t, got.ReactingAccountIDs)

	require.NoError(t, posts.Delete(ctx, "p1"))
	assert.ErrorIs(t, posts.Delete(ctx, "p1"), svcErr.ErrNotFound)
}

func TestUpdateAndSet(t *testing.T) {
	ctx := context.Background()
	posts := setupPosts(t, 5)
	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))

	require.NoError(t, posts.Update(ctx, "p1", map[string]any{"text": "edited"}))
	got, err := posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, int64(1), got.Version)

	assert.ErrorIs(t, posts.Update(ctx, "nope", map[string]any{"text": "x"}), svcErr.ErrNotFound)

	got.Text = "replaced"
	require.NoError(t, posts.Set(ctx, got))
	got, err = posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Text)
	assert.Equal(t, int64(2), got.Version)
}

func TestMutate_RetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	posts := setupPosts(t, 5)
	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))

	calls := 0
	_, err := posts.Mutate(ctx, "p1", func(p *db.Post) error {
		calls++
		if calls == 1 {
			// a competing writer sneaks in between read and write
			_, err := posts.Mutate(ctx, "p1", func(inner *db.Post) error {
				inner.ReactingAccountIDs, _ = db.AddID(inner.ReactingAccountIDs, "u2")
				return nil
			})
			require.NoError(t, err)
		}
		p.ReactingAccountIDs, _ = db.AddID(p.ReactingAccountIDs, "u1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	got, err := posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, []string(got.ReactingAccountIDs))
	assert.Equal(t, int64(2), got.Version)
}

func TestMutate_GivesUpWithConflict(t *testing.T) {
	ctx := context.Background()
	posts := setupPosts(t, 2)
	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))

	_, err := posts.Mutate(ctx, "p1", func(p *db.Post) error {
		require.NoError(t, posts.Update(ctx, "p1", map[string]any{"text": "again"}))
		p.Text = "mine"
		return nil
	})
	assert.ErrorIs(t, err, svcErr.ErrConflict)
}

func TestMutate_NoChangeSkipsWrite(t *testing.T) {
	ctx := context.Background()
	posts := setupPosts(t, 5)
	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))

	doc, err := posts.Mutate(ctx, "p1", func(p *db.Post) error { return docstore.ErrNoChange })
	require.NoError(t, err)
	assert.Equal(t, int64(0), doc.Version)

	_, err = posts.Mutate(ctx, "nope", func(p *db.Post) error { return nil })
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestMutate_ConcurrentAddsAllSurvive(t *testing.T) {
	ctx := context.Background()
	posts := setupPosts(t, 50)
	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))

	ids := []string{"a", "b", "c", "d", "e", "f"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := posts.Mutate(ctx, "p1", func(p *db.Post) error {
				p.ReactingAccountIDs, _ = db.AddID(p.ReactingAccountIDs, id)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, []string(got.ReactingAccountIDs))
}

func TestQuery_ContainsOrderLimit(t *testing.T) {
	ctx := context.Background()
	posts := setupPosts(t, 5)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	p1 := newPost("p1", "u1", base)
	p1.ReactingAccountIDs = db.IDSet{"x", "y"}
	p2 := newPost("p2", "u2", base.Add(time.Minute))
	p2.ReactingAccountIDs = db.IDSet{"y"}
	p3 := newPost("p3", "u3", base.Add(2*time.Minute))
	for _, p := range []*db.Post{p1, p2, p3} {
		require.NoError(t, posts.Create(ctx, p))
	}

	got, err := posts.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Contains("reacting_account_ids", "y")},
		OrderBy: []docstore.Order{{Field: "created_at", Desc: true}},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	assert.Equal(t, "p1", got[1].ID)

	got, err = posts.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.In("author_id", []string{"u1", "u3"})},
		OrderBy: []docstore.Order{{Field: "created_at"}},
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)

	n, err := posts.Count(ctx, docstore.Contains("reacting_account_ids", "x"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteWhere(t *testing.T) {
	ctx := context.Background()
	posts := setupPosts(t, 5)
	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))
	require.NoError(t, posts.Create(ctx, newPost("p2", "u1", time.Now())))
	require.NoError(t, posts.Create(ctx, newPost("p3", "u2", time.Now())))

	ids, err := posts.DeleteWhere(ctx, docstore.Eq("author_id", "u1"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)

	ids, err = posts.DeleteWhere(ctx, docstore.Eq("author_id", "u1"))
	require.NoError(t, err)
	assert.Empty(t, ids)

	n, err := posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSubscribe_ReceivesMatchingChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	posts := setupPosts(t, 5)
	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))
	require.NoError(t, posts.Create(ctx, newPost("p2", "u1", time.Now())))

	changes := make(chan docstore.Change[db.Post], 10)
	sub, err := posts.Subscribe(ctx,
		func(c docstore.Change[db.Post]) bool { return c.ID == "p1" },
		func(c docstore.Change[db.Post]) { changes <- c },
	)
	require.NoError(t, err)

	require.NoError(t, posts.Update(ctx, "p2", map[string]any{"text": "ignored"}))
	_, err = posts.Mutate(ctx, "p1", func(p *db.Post) error {
		p.ReactingAccountIDs, _ = db.AddID(p.ReactingAccountIDs, "u9")
		return nil
	})
	require.NoError(t, err)

	select {
	case c := <-changes:
		assert.Equal(t, docstore.ChangeUpdated, c.Kind)
		require.NotNil(t, c.Doc)
		assert.Contains(t, []string(c.Doc.ReactingAccountIDs), "u9")
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}

	require.NoError(t, posts.Delete(ctx, "p1"))
	select {
	case c := <-changes:
		assert.Equal(t, docstore.ChangeDeleted, c.Kind)
		assert.Nil(t, c.Doc)
	case <-time.After(2 * time.Second):
		t.Fatal("no delete delivered")
	}

	require.NoError(t, sub.Close())
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
}

func TestSubscribeDoc_SkipsOtherDocumentsWithoutReading(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gdb := testutil.NewDB(t)
	var p2Reads atomic.Int32
	require.NoError(t, gdb.Callback().Query().After("gorm:query").Register("count_p2_reads", func(tx *gorm.DB) {
		for _, v := range tx.Statement.Vars {
			if v == "p2" {
				p2Reads.Add(1)
			}
		}
	}))
	rc, _ := testutil.NewRedis(t)
	posts := docstore.NewCollection[db.Post](docstore.New(gdb, rc, logger.Discard(), docstore.Options{Timeout: 2 * time.Second}), "posts")

	require.NoError(t, posts.Create(ctx, newPost("p1", "u1", time.Now())))
	require.NoError(t, posts.Create(ctx, newPost("p2", "u1", time.Now())))

	changes := make(chan docstore.Change[db.Post], 10)
	sub, err := posts.SubscribeDoc(ctx, "p1", func(c docstore.Change[db.Post]) { changes <- c })
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, posts.Update(ctx, "p2", map[string]any{"text": "busy"}))
	}
	require.NoError(t, posts.Update(ctx, "p1", map[string]any{"text": "watched"}))

	select {
	case c := <-changes:
		assert.Equal(t, "p1", c.ID)
		require.NotNil(t, c.Doc)
		assert.Equal(t, "watched", c.Doc.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}
	// p2 events were published before p1's and are handled in order
	assert.Zero(t, p2Reads.Load())
	assert.Empty(t, changes)
}
