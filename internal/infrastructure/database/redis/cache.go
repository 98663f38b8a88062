package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/rankforge/rankforge/pkg/errors"
)

// Cache is a JSON value cache with key prefixing and TTL jitter.  The jitter
// spreads expirations so a burst of writes does not expire as one thundering
// herd.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	jitter time.Duration
}

// NewCache builds a Cache. jitter may be zero.
func NewCache(client *redis.Client, prefix string, ttl, jitter time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl, jitter: jitter}
}

func (c *Cache) key(k string) string {
	return c.prefix + ":" + k
}

// Get unmarshals the cached value into dest.  The second return value
// reports a hit; cache errors are returned, misses are not.
func (c *Cache) Get(ctx context.Context, k string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache get")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cache value unmarshal")
	}
	return true, nil
}

// Set stores value under k with the cache's TTL plus jitter.
func (c *Cache) Set(ctx context.Context, k string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cache value marshal")
	}

	ttl := c.ttl
	if c.jitter > 0 {
		ttl += time.Duration(rand.Int63n(int64(c.jitter)))
	}
	if err := c.client.Set(ctx, c.key(k), raw, ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache set")
	}
	return nil
}

// Delete removes k from the cache.
func (c *Cache) Delete(ctx context.Context, k string) error {
	if err := c.client.Del(ctx, c.key(k)).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache delete")
	}
	return nil
}
