package social_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/fitsocial/internal/blobstore"
	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/engagement"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/social"
	"github.com/oggyb/fitsocial/internal/testutil"
)

// cascadeFixture: x authors a post with a photo and a comment on y's post;
// follower follows x, reactor reacts to x's post and x's comment, commenter
// comments on x's post. x itself follows y, reacted to y's post and has a
// workout.
type cascadeFixture struct {
	xPost    *db.Post
	yPost    *db.Post
	xComment *db.Comment
	cComment *db.Comment
	xPicture string
	xWorkout *db.Workout
}

func buildCascadeFixture(t *testing.T, svc *social.Service, env *testutil.Env) cascadeFixture {
	t.Helper()
	ctx := context.Background()
	for _, id := range []string{"x", "y", "follower", "reactor", "commenter"} {
		env.CreateAccount(t, id)
	}
	x := testutil.Session("x")

	require.NoError(t, env.App.Identities.Register(ctx, "x", "x@test.com", "secret1"))
	pic, err := env.App.Blobs.Put(ctx, "x", []byte("face"))
	require.NoError(t, err)
	require.NoError(t, env.App.Repos.Accounts.Update(ctx, "x", map[string]any{"profile_picture_ref": pic}))

	var f cascadeFixture
	f.xPicture = pic
	f.xPost, err = svc.CreatePost(ctx, x, "x post", []byte("photo"))
	require.NoError(t, err)
	f.yPost, err = svc.CreatePost(ctx, testutil.Session("y"), "y post", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Follow(ctx, testutil.Session("follower"), "x"))
	require.NoError(t, svc.Follow(ctx, x, "y"))
	require.NoError(t, svc.ReactToPost(ctx, testutil.Session("reactor"), f.xPost.ID))
	require.NoError(t, svc.ReactToPost(ctx, x, f.yPost.ID))

	f.xComment, err = svc.AddComment(ctx, x, f.yPost.ID, "x was here")
	require.NoError(t, err)
	require.NoError(t, svc.ReactToComment(ctx, testutil.Session("reactor"), f.xComment.ID))
	f.cComment, err = svc.AddComment(ctx, testutil.Session("commenter"), f.xPost.ID, "nice one")
	require.NoError(t, err)
	require.NoError(t, svc.ReactToComment(ctx, x, f.cComment.ID))

	f.xWorkout, err = engagement.NewService(env.App).CreateWorkout(ctx, x, engagement.WorkoutPlan{
		Type: "hiit", Date: time.Now(), SeriesPlanned: 4, WorkTimeSeconds: 30, RestTimeSeconds: 15,
	})
	require.NoError(t, err)
	return f
}

func TestDeleteAccount_Cascade(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	f := buildCascadeFixture(t, svc, env)

	report, err := svc.DeleteAccount(ctx, testutil.Session("x"))
	require.NoError(t, err)
	require.NoError(t, report.Err())

	var names []string
	for _, st := range report.Steps {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{
		social.StepScrubFollowers, social.StepDeleteComments, social.StepDeletePosts,
		social.StepScrubReactions, social.StepDeleteWorkouts, social.StepDeleteBlobs,
		social.StepDeleteIdentity, social.StepDeleteAccount,
	}, names)

	st, _ := report.Step(social.StepScrubFollowers)
	assert.Equal(t, 1, st.Affected)
	st, _ = report.Step(social.StepDeletePosts)
	assert.Equal(t, 1, st.Affected)

	// x and everything x authored are gone
	_, err = env.App.Repos.Accounts.Get(ctx, "x")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Repos.Posts.Get(ctx, f.xPost.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Repos.Comments.Get(ctx, f.xComment.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Repos.Comments.Get(ctx, f.cComment.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound, "comments on x's post go with it")
	_, err = env.App.Repos.Workouts.Get(ctx, f.xWorkout.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Blobs.Get(ctx, f.xPicture)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Blobs.Get(ctx, f.xPost.PhotoRef)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Identities.Authenticate(ctx, "x@test.com", "secret1")
	assert.Error(t, err)

	// no dangling references in the survivors
	assert.Empty(t, env.Account(t, "follower").FollowedIDs)
	reactor := env.Account(t, "reactor")
	assert.Empty(t, reactor.ReactedPostIDs)
	assert.Empty(t, reactor.ReactedCommentIDs)
	commenter := env.Account(t, "commenter")
	assert.Empty(t, commenter.CommentedPostIDs)

	yPost := env.Post(t, f.yPost.ID)
	assert.Empty(t, yPost.ReactingAccountIDs)
	assert.Empty(t, yPost.CommentingAccountIDs)
}

func TestRepairAccountDeletion(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	f := buildCascadeFixture(t, svc, env)

	_, err := svc.RepairAccountDeletion(ctx, testutil.Session("y"), "x")
	assert.ErrorIs(t, err, svcErr.ErrInvalidState, "live accounts are not repaired")

	// simulate a half-finished deletion: only the account document went away
	require.NoError(t, env.App.Repos.Accounts.Delete(ctx, "x"))

	report, err := svc.RepairAccountDeletion(ctx, testutil.Session("y"), "x")
	require.NoError(t, err)
	require.NoError(t, report.Err())
	_, ran := report.Step(social.StepDeleteAccount)
	assert.False(t, ran)

	assert.Empty(t, env.Account(t, "follower").FollowedIDs)
	assert.Empty(t, env.Account(t, "reactor").ReactedPostIDs)
	assert.Empty(t, env.Post(t, f.yPost.ID).ReactingAccountIDs)
	_, err = env.App.Repos.Posts.Get(ctx, f.xPost.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	// running it again finds nothing left to do
	again, err := svc.RepairAccountDeletion(ctx, testutil.Session("y"), "x")
	require.NoError(t, err)
	require.NoError(t, again.Err())
	for _, st := range again.Steps {
		assert.Zero(t, st.Affected, st.Name)
	}
}

var errBlobsDown = errors.New("blob backend down")

// brokenDeletes stores and reads blobs but fails every delete.
type brokenDeletes struct {
	blobstore.Store
}

func (brokenDeletes) Delete(context.Context, string) error { return errBlobsDown }

func TestDeleteAccount_FailedStepDoesNotBlockTheRest(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	env.App.Blobs = brokenDeletes{env.App.Blobs}
	svc := social.NewService(env.App, engagement.NewService(env.App))
	f := buildCascadeFixture(t, svc, env)

	report, err := svc.DeleteAccount(ctx, testutil.Session("x"))
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.ErrorIs(t, report.Err(), errBlobsDown)

	blobs, ran := report.Step(social.StepDeleteBlobs)
	require.True(t, ran)
	assert.ErrorIs(t, blobs.Err, errBlobsDown)

	for _, name := range []string{social.StepDeleteIdentity, social.StepDeleteAccount} {
		st, ran := report.Step(name)
		require.True(t, ran, name)
		assert.NoError(t, st.Err, name)
	}
	acc, _ := report.Step(social.StepDeleteAccount)
	assert.Equal(t, 1, acc.Affected)

	_, err = env.App.Repos.Accounts.Get(ctx, "x")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = env.App.Identities.Authenticate(ctx, "x@test.com", "secret1")
	assert.Error(t, err)
	_, err = env.App.Repos.Workouts.Get(ctx, f.xWorkout.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	// the picture is left behind for a later repair
	_, err = env.App.Blobs.Get(ctx, f.xPicture)
	assert.NoError(t, err)
}
