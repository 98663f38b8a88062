// Package redis provides the Redis client and the caches built on it.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/rankforge/rankforge/internal/config"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
)

// NewClient opens a Redis connection and verifies it with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "ping redis")
	}
	return client, nil
}
