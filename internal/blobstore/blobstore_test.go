package blobstore_test

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/fitsocial/internal/blobstore"
	"github.com/oggyb/fitsocial/internal/cache"
	"github.com/oggyb/fitsocial/internal/config"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

func newRedisStore(t *testing.T) *blobstore.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return blobstore.NewRedisStore(rc, "http://localhost:8080/blobs/")
}

func TestNewLocator(t *testing.T) {
	loc, err := blobstore.NewLocator("u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc, "images/u1/"))

	owner, ok := blobstore.OwnerOf(loc)
	assert.True(t, ok)
	assert.Equal(t, "u1", owner)

	_, err = blobstore.NewLocator("")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	_, err = blobstore.NewLocator("a/b")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newRedisStore(t)

	loc, err := s.Put(ctx, "u1", []byte("jpeg-bytes"))
	require.NoError(t, err)

	data, err := s.Get(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	url, err := s.ResolveDownloadURL(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/blobs/"+loc, url)

	require.NoError(t, s.Delete(ctx, loc))
	_, err = s.Get(ctx, loc)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, loc))
}

func TestRedisStore_RejectsForeignLocator(t *testing.T) {
	s := newRedisStore(t)
	_, err := s.Get(context.Background(), "videos/x")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestNew_Drivers(t *testing.T) {
	cfg := &config.Config{}
	cfg.Blob.Driver = "cloudinary"
	_, err := blobstore.New(cfg, nil)
	assert.Error(t, err, "missing credentials")

	cfg.Blob.CloudName, cfg.Blob.APIKey, cfg.Blob.APISecret = "demo", "key", "secret"
	cfg.Blob.Folder = "fitsocial"
	s, err := blobstore.New(cfg, nil)
	require.NoError(t, err)
	url, err := s.ResolveDownloadURL(context.Background(), "images/u1/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/fitsocial/images/u1/abc", url)

	cfg.Blob.Driver = "s3"
	_, err = blobstore.New(cfg, nil)
	assert.Error(t, err)
}
