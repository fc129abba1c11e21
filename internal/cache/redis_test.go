package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/fitsocial/internal/cache"
	"github.com/oggyb/fitsocial/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestCount_MissThenAdjust(t *testing.T) {
	ctx := context.Background()
	rc, mr := setupCache(t)
	key := rc.KeyForReactionCount("post", "p1")

	_, hit, err := rc.GetCount(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	// adjusting an uncached counter must not create it
	require.NoError(t, rc.AdjustCount(ctx, key, 1))
	assert.False(t, mr.Exists(key))

	require.NoError(t, rc.SetCount(ctx, key, 4))
	require.NoError(t, rc.AdjustCount(ctx, key, -1))

	n, hit, err := rc.GetCount(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, cache.CountTTL, mr.TTL(key))
}

func TestFlag_ConsumedOnce(t *testing.T) {
	ctx := context.Background()
	rc, _ := setupCache(t)
	key := rc.KeyForLevelUp("u1")

	require.NoError(t, rc.SetFlag(ctx, key, cache.LevelUpTTL))

	first, err := rc.ConsumeFlag(ctx, key)
	require.NoError(t, err)
	second, err := rc.ConsumeFlag(ctx, key)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

func TestPublishSubscribe(t *testing.T) {
	ctx := context.Background()
	rc, _ := setupCache(t)

	msgs, closeFn, err := rc.Subscribe(ctx, "posts")
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, rc.Publish(ctx, "posts", []byte(`{"id":"p1"}`)))

	select {
	case got := <-msgs:
		assert.JSONEq(t, `{"id":"p1"}`, string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestGetBytes_Miss(t *testing.T) {
	rc, _ := setupCache(t)
	b, err := rc.GetBytes(context.Background(), "blob:missing")
	require.NoError(t, err)
	assert.Nil(t, b)
}
