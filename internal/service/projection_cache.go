package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProjectionCache stores serialized derived views under versioned keys.
// A miss is not an error; Get reports it with a false second return.
type ProjectionCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisProjectionCache backs ProjectionCache with Redis.
type RedisProjectionCache struct {
	rdb *redis.Client
}

// NewRedisProjectionCache creates a new RedisProjectionCache.
func NewRedisProjectionCache(rdb *redis.Client) *RedisProjectionCache {
	return &RedisProjectionCache{rdb: rdb}
}

func (c *RedisProjectionCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (c *RedisProjectionCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}
