package social_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/fitsocial/internal/engagement"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/social"
	"github.com/oggyb/fitsocial/internal/testutil"
)

//
// Test helpers
//

// setupService builds the social service on an in-memory SQLite DB and a
// miniredis, with the engagement service as medal checker.
func setupService(t *testing.T) (*social.Service, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	return social.NewService(env.App, engagement.NewService(env.App)), env
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ids(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

//
// Follow
//

func TestFollow_Twice(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	env.CreateAccount(t, "b")
	sess := testutil.Session("a")

	require.NoError(t, svc.Follow(ctx, sess, "b"))
	err := svc.Follow(ctx, sess, "b")
	assert.ErrorIs(t, err, svcErr.ErrAlreadyRelated)

	assert.Equal(t, []string{"b"}, ids(env.Account(t, "a").FollowedIDs))
}

func TestFollow_ThenUnfollow(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	env.CreateAccount(t, "b")
	sess := testutil.Session("a")

	require.NoError(t, svc.Follow(ctx, sess, "b"))
	require.NoError(t, svc.Unfollow(ctx, sess, "b"))
	assert.NotContains(t, ids(env.Account(t, "a").FollowedIDs), "b")

	err := svc.Unfollow(ctx, sess, "b")
	assert.ErrorIs(t, err, svcErr.ErrNotRelated)
}

func TestFollow_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")

	assert.ErrorIs(t, svc.Follow(ctx, testutil.Session("a"), "a"), svcErr.ErrValidation)
	assert.ErrorIs(t, svc.Follow(ctx, testutil.Session("a"), "ghost"), svcErr.ErrNotFound)
	assert.ErrorIs(t, svc.Follow(ctx, testutil.Session(""), "a"), svcErr.ErrUnauthenticated)
}

//
// Reactions
//

func TestScenario_FollowReactUnreact(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "u1")
	env.CreateAccount(t, "u2")
	u1, u2 := testutil.Session("u1"), testutil.Session("u2")

	require.NoError(t, svc.Follow(ctx, u1, "u2"))
	assert.Equal(t, []string{"u2"}, ids(env.Account(t, "u1").FollowedIDs))

	p1, err := svc.CreatePost(ctx, u2, "Did this today!", nil)
	require.NoError(t, err)
	assert.Equal(t, "u2", p1.AuthorUsername)

	require.NoError(t, svc.ReactToPost(ctx, u1, p1.ID))
	assert.Equal(t, []string{"u1"}, ids(env.Post(t, p1.ID).ReactingAccountIDs))
	assert.Equal(t, []string{p1.ID}, ids(env.Account(t, "u1").ReactedPostIDs))

	require.NoError(t, svc.RemoveReactionFromPost(ctx, u1, p1.ID))
	assert.Empty(t, env.Post(t, p1.ID).ReactingAccountIDs)
	assert.Empty(t, env.Account(t, "u1").ReactedPostIDs)
}

func TestReactToPost_Twice(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	env.CreatePost(t, "p", "a", "hello", t0)
	sess := testutil.Session("a")

	require.NoError(t, svc.ReactToPost(ctx, sess, "p"))
	assert.ErrorIs(t, svc.ReactToPost(ctx, sess, "p"), svcErr.ErrAlreadyRelated)
	assert.Equal(t, []string{"a"}, ids(env.Post(t, "p").ReactingAccountIDs))

	require.NoError(t, svc.RemoveReactionFromPost(ctx, sess, "p"))
	assert.ErrorIs(t, svc.RemoveReactionFromPost(ctx, sess, "p"), svcErr.ErrNotRelated)

	assert.ErrorIs(t, svc.ReactToPost(ctx, sess, "missing"), svcErr.ErrNotFound)
}

func TestReactToPost_ConcurrentReactionsAllSurvive(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "author")
	env.CreatePost(t, "p", "author", "hello", t0)

	reactors := []string{"r1", "r2", "r3", "r4"}
	for _, id := range reactors {
		env.CreateAccount(t, id)
	}

	var wg sync.WaitGroup
	for _, id := range reactors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.ReactToPost(ctx, testutil.Session(id), "p"))
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, reactors, ids(env.Post(t, "p").ReactingAccountIDs))
}

func TestCountPostReactions_CacheFirst(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	env.CreateAccount(t, "b")
	env.CreatePost(t, "p", "a", "hello", t0)
	key := env.App.RedisCache.KeyForReactionCount("post", "p")

	require.NoError(t, svc.ReactToPost(ctx, testutil.Session("a"), "p"))
	assert.False(t, env.Redis.Exists(key), "uncached counters are not created by reactions")

	n, err := svc.CountPostReactions(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, env.Redis.Exists(key))

	require.NoError(t, svc.ReactToPost(ctx, testutil.Session("b"), "p"))
	v, err := env.Redis.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	n, err = svc.CountPostReactions(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.CountPostReactions(ctx, "missing")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestCommentReactions(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	env.CreateAccount(t, "b")
	env.CreatePost(t, "p", "a", "hello", t0)

	c, err := svc.AddComment(ctx, testutil.Session("a"), "p", "nice")
	require.NoError(t, err)

	b := testutil.Session("b")
	require.NoError(t, svc.ReactToComment(ctx, b, c.ID))
	assert.ErrorIs(t, svc.ReactToComment(ctx, b, c.ID), svcErr.ErrAlreadyRelated)
	assert.Equal(t, []string{c.ID}, ids(env.Account(t, "b").ReactedCommentIDs))

	require.NoError(t, svc.RemoveReactionFromComment(ctx, b, c.ID))
	assert.ErrorIs(t, svc.RemoveReactionFromComment(ctx, b, c.ID), svcErr.ErrNotRelated)
	assert.Empty(t, env.Account(t, "b").ReactedCommentIDs)
}

//
// Comments and posts
//

func TestAddComment_MarksParticipationAndMedal(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	env.CreateAccount(t, "b")
	env.CreatePost(t, "p", "a", "hello", t0)
	b := testutil.Session("b")

	c1, err := svc.AddComment(ctx, b, "p", "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", c1.Text)
	assert.Equal(t, "b", c1.AuthorUsername)
	_, err = svc.AddComment(ctx, b, "p", "second")
	require.NoError(t, err)

	acc := env.Account(t, "b")
	assert.Equal(t, []string{"p"}, ids(acc.CommentedPostIDs))
	assert.Equal(t, []string{engagement.MedalFirstComment}, ids(acc.Medals))
	assert.Equal(t, []string{"b"}, ids(env.Post(t, "p").CommentingAccountIDs))

	list, err := svc.ListComments(ctx, "p")
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = svc.AddComment(ctx, b, "p", "")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	_, err = svc.AddComment(ctx, b, "p", strings.Repeat("x", social.MaxTextLength+1))
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	_, err = svc.AddComment(ctx, b, "missing", "hi")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = svc.ListComments(ctx, "missing")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestDeleteComment_RetractsOnLastComment(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	env.CreateAccount(t, "b")
	env.CreatePost(t, "p", "a", "hello", t0)
	b := testutil.Session("b")

	c1, err := svc.AddComment(ctx, b, "p", "one")
	require.NoError(t, err)
	c2, err := svc.AddComment(ctx, b, "p", "two")
	require.NoError(t, err)
	require.NoError(t, svc.ReactToComment(ctx, testutil.Session("a"), c1.ID))

	assert.ErrorIs(t, svc.DeleteComment(ctx, testutil.Session("a"), c1.ID), svcErr.ErrForbidden)

	require.NoError(t, svc.DeleteComment(ctx, b, c1.ID))
	assert.Empty(t, env.Account(t, "a").ReactedCommentIDs)
	// one comment left: still participating
	assert.Equal(t, []string{"p"}, ids(env.Account(t, "b").CommentedPostIDs))

	require.NoError(t, svc.DeleteComment(ctx, b, c2.ID))
	assert.Empty(t, env.Account(t, "b").CommentedPostIDs)
	assert.Empty(t, env.Post(t, "p").CommentingAccountIDs)

	assert.ErrorIs(t, svc.DeleteComment(ctx, b, c2.ID), svcErr.ErrNotFound)
}

func TestCreatePost_WithPhoto(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	sess := testutil.Session("a")

	p, err := svc.CreatePost(ctx, sess, "look", []byte("img"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.PhotoRef, "images/a/"))

	data, err := env.App.Blobs.Get(ctx, p.PhotoRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)

	_, err = svc.CreatePost(ctx, sess, strings.Repeat("y", 201), nil)
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	// exactly the limit is fine
	_, err = svc.CreatePost(ctx, sess, strings.Repeat("é", social.MaxTextLength), nil)
	assert.NoError(t, err)
}

func TestDeletePost_CleansReferences(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "a")
	env.CreateAccount(t, "b")
	a, b := testutil.Session("a"), testutil.Session("b")

	p, err := svc.CreatePost(ctx, a, "post", []byte("img"))
	require.NoError(t, err)
	require.NoError(t, svc.ReactToPost(ctx, b, p.ID))
	c, err := svc.AddComment(ctx, b, p.ID, "hey")
	require.NoError(t, err)
	require.NoError(t, svc.ReactToComment(ctx, a, c.ID))

	assert.ErrorIs(t, svc.DeletePost(ctx, b, p.ID), svcErr.ErrForbidden)
	require.NoError(t, svc.DeletePost(ctx, a, p.ID))

	_, err = env.App.Repos.Posts.Get(ctx, p.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Repos.Comments.Get(ctx, c.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Blobs.Get(ctx, p.PhotoRef)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	accB := env.Account(t, "b")
	assert.Empty(t, accB.ReactedPostIDs)
	assert.Empty(t, accB.CommentedPostIDs)
	assert.Empty(t, env.Account(t, "a").ReactedCommentIDs)
}
