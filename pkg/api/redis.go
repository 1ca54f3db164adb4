package api

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache is a Cache backed by Redis, so multiple processes can share cached responses.
// Items are gob-encoded and expire after the configured TTL (0 means no expiration).
type RedisCache struct {
	rdb       *redis.Client
	keyPrefix string
	ttl       time.Duration
	timeout   time.Duration
}

// NewRedisCache creates a new RedisCache.
// The client is owned by the caller, who must close it when finished.
func NewRedisCache(rdb *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		rdb:       rdb,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		timeout:   2 * time.Second,
	}
}

// Set implements the Cache interface.
func (c *RedisCache) Set(key string, res Response) error {
	data, err := gobEncode(CacheItem{
		Response: res,
		Created:  time.Now(),
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.rdb.Set(ctx, c.keyPrefix+key, data, c.ttl).Err()
}

// Get implements the Cache interface.
func (c *RedisCache) Get(key string) (Response, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	data, err := c.rdb.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Response{}, false, nil
	} else if err != nil {
		return Response{}, false, err
	}
	item, err := gobDecode(data)
	if err != nil {
		return Response{}, true, err
	}
	return item.Response, true, nil
}
