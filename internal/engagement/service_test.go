package engagement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/fitsocial/internal/engagement"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/testutil"
)

func setupService(t *testing.T) (*engagement.Service, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	return engagement.NewService(env.App), env
}

func TestConstants(t *testing.T) {
	assert.Equal(t, 1, engagement.InitialLevel)
	assert.Equal(t, 3, engagement.MaxLevel)

	th, ok := engagement.ThresholdFor(2)
	require.True(t, ok)
	assert.Equal(t, engagement.MedalLevel2, th.Medal)
	_, ok = engagement.ThresholdFor(3)
	assert.False(t, ok)
}

func TestRecordWorkoutCompletion_Thresholds(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "u1")

	// 0 -> 1: nothing
	out, err := svc.RecordWorkoutCompletion(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, out.CompletedWorkouts)
	assert.False(t, out.LeveledUp)
	assert.Empty(t, out.MedalGranted)

	// 1 -> 2: exactly one level-up and the second-level medal
	out, err = svc.RecordWorkoutCompletion(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, out.LeveledUp)
	assert.Equal(t, 2, out.Level)
	assert.Equal(t, engagement.MedalLevel2, out.MedalGranted)

	acc := env.Account(t, "u1")
	assert.Equal(t, 2, acc.Level)
	assert.Equal(t, []string{engagement.MedalLevel2}, []string(acc.Medals))

	// 2 -> 3 and 3 -> 4: neither
	for range 2 {
		out, err = svc.RecordWorkoutCompletion(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, out.LeveledUp)
		assert.Empty(t, out.MedalGranted)
	}
	assert.Equal(t, 2, env.Account(t, "u1").Level)

	// 4 -> 5: third-level medal
	out, err = svc.RecordWorkoutCompletion(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, out.LeveledUp)
	assert.Equal(t, 3, out.Level)
	assert.Equal(t, engagement.MedalLevel3, out.MedalGranted)

	acc = env.Account(t, "u1")
	assert.Equal(t, 5, acc.CompletedWorkoutCount)
	assert.Equal(t, engagement.MaxLevel, acc.Level)
	assert.Equal(t, []string{engagement.MedalLevel2, engagement.MedalLevel3}, []string(acc.Medals))
}

func TestLevelUp_CapsAtMaxLevel(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "u1")

	for want := 2; want <= engagement.MaxLevel; want++ {
		level, leveled, err := svc.LevelUp(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, leveled)
		assert.Equal(t, want, level)
	}

	level, leveled, err := svc.LevelUp(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, leveled)
	assert.Equal(t, engagement.MaxLevel, level)
}

func TestLevelUpFlag_ConsumedOnce(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "u1")
	sess := testutil.Session("u1")

	got, err := svc.ConsumeLevelUpFlag(ctx, sess)
	require.NoError(t, err)
	assert.False(t, got)

	_, _, err = svc.LevelUp(ctx, "u1")
	require.NoError(t, err)
	ttl := env.Redis.TTL(env.App.RedisCache.KeyForLevelUp("u1"))
	assert.Equal(t, 24*time.Hour, ttl)

	got, err = svc.ConsumeLevelUpFlag(ctx, sess)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = svc.ConsumeLevelUpFlag(ctx, sess)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestGrantMedal_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "u1")

	// caller pre-checks
	for range 2 {
		has, err := svc.HasMedal(ctx, "u1", engagement.MedalLevel2)
		require.NoError(t, err)
		if !has {
			_, err = svc.GrantMedal(ctx, "u1", engagement.MedalLevel2)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, []string{engagement.MedalLevel2}, []string(env.Account(t, "u1").Medals))

	// no pre-check: still exactly one
	granted, err := svc.GrantMedal(ctx, "u1", engagement.MedalLevel3)
	require.NoError(t, err)
	assert.True(t, granted)
	granted, err = svc.GrantMedal(ctx, "u1", engagement.MedalLevel3)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, []string{engagement.MedalLevel2, engagement.MedalLevel3}, []string(env.Account(t, "u1").Medals))

	_, err = svc.GrantMedal(ctx, "missing", engagement.MedalLevel2)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestCheckFirstCommentMedal(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.CreateAccount(t, "u1")

	granted, err := svc.CheckFirstCommentMedal(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, granted)
	granted, err = svc.CheckFirstCommentMedal(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, granted)
}
