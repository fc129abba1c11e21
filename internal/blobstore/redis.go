package blobstore

import (
	"context"
	"strings"

	"github.com/oggyb/fitsocial/internal/cache"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

const blobKeyPrefix = "blob:"

// RedisStore keeps blobs in Redis. Used in development and tests.
type RedisStore struct {
	cache   *cache.RedisCache
	baseURL string
}

func NewRedisStore(rc *cache.RedisCache, publicBaseURL string) *RedisStore {
	return &RedisStore{cache: rc, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *RedisStore) Put(ctx context.Context, accountID string, data []byte) (string, error) {
	locator, err := NewLocator(accountID)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, blobKeyPrefix+locator, data, 0); err != nil {
		return "", svcErr.Unavailable("put blob", err)
	}
	return locator, nil
}

func (s *RedisStore) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := checkLocator(locator); err != nil {
		return nil, err
	}
	b, err := s.cache.GetBytes(ctx, blobKeyPrefix+locator)
	if err != nil {
		return nil, svcErr.Unavailable("get blob", err)
	}
	if b == nil {
		return nil, svcErr.NotFound("blob", locator)
	}
	return b, nil
}

func (s *RedisStore) Delete(ctx context.Context, locator string) error {
	if err := checkLocator(locator); err != nil {
		return err
	}
	if err := s.cache.Del(ctx, blobKeyPrefix+locator); err != nil {
		return svcErr.Unavailable("delete blob", err)
	}
	return nil
}

func (s *RedisStore) ResolveDownloadURL(_ context.Context, locator string) (string, error) {
	if err := checkLocator(locator); err != nil {
		return "", err
	}
	return s.baseURL + "/" + locator, nil
}
