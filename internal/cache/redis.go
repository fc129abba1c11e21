package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/fitsocial/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	CountTTL     = time.Hour
	LevelUpTTL   = 24 * time.Hour
	changePrefix = "docs:"
)

// adjustIfPresent only touches counters that are already cached, so a
// missing key never turns into a bogus +1/-1 count.
var adjustIfPresent = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	local n = redis.call("INCRBY", KEYS[1], ARGV[1])
	redis.call("EXPIRE", KEYS[1], ARGV[2])
	return n
end
return false
`)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// GetBytes returns (nil, nil) on a miss.
func (c *RedisCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForReactionCount generates Redis key for an entity's reaction count
func (c *RedisCache) KeyForReactionCount(kind, id string) string {
	return fmt.Sprintf("reactions:count:%s:%s", kind, id)
}

// KeyForLevelUp generates Redis key for the pending level-up flag
func (c *RedisCache) KeyForLevelUp(accountID string) string {
	return fmt.Sprintf("levelup:pending:%s", accountID)
}

// GetCount reads a cached counter. hit is false on a cache miss.
func (c *RedisCache) GetCount(ctx context.Context, key string) (n int64, hit bool, err error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, CountTTL).Err()
	return n, true, nil
}

func (c *RedisCache) SetCount(ctx context.Context, key string, n int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, key, n, CountTTL).Err()
}

// AdjustCount adds delta to a cached counter if it is cached.
func (c *RedisCache) AdjustCount(ctx context.Context, key string, delta int64) error {
	err := adjustIfPresent.Run(ctx, c.Client, []string{key}, delta, int(CountTTL.Seconds())).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (c *RedisCache) SetFlag(ctx context.Context, key string, ttl time.Duration) error {
	return c.Client.Set(ctx, key, "1", ttl).Err()
}

// ConsumeFlag reads and clears a flag in one round trip.
func (c *RedisCache) ConsumeFlag(ctx context.Context, key string) (bool, error) {
	_, err := c.Client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// Publish sends a change notification on a collection channel.
func (c *RedisCache) Publish(ctx context.Context, collection string, payload []byte) error {
	return c.Client.Publish(ctx, changePrefix+collection, payload).Err()
}

// Subscribe listens on a collection channel. The returned channel is closed
// once the returned close func is called.
func (c *RedisCache) Subscribe(ctx context.Context, collection string) (<-chan []byte, func() error, error) {
	pubsub := c.Client.Subscribe(ctx, changePrefix+collection)
	// wait for the subscription to be acknowledged so no publish is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			out <- []byte(msg.Payload)
		}
	}()
	return out, pubsub.Close, nil
}
