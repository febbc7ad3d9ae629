// Package cache provides a read-through Redis cache for product lookups.
// Entries expire by TTL only; stale reads within the TTL are an accepted
// trade-off, not a bug. Cache failures degrade to a direct fetch.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache is a string-valued cache with TTL expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Key(operation, id string) string
	Close() error
}

type redisCache struct {
	client      *redis.Client
	serviceName string
	logger      zerolog.Logger
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(addr, serviceName string, logger zerolog.Logger) Cache {
	return &redisCache{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
		logger:      logger.With().Str("component", "cache").Logger(),
	}
}

func (r *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (r *redisCache) Key(operation, id string) string {
	return fmt.Sprintf("%s:%s:%s", r.serviceName, operation, id)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

// Noop is a cache that stores nothing. Used when Redis is disabled.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) (string, bool, error) { return "", false, nil }
func (Noop) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}
func (Noop) Key(operation, id string) string { return operation + ":" + id }
func (Noop) Close() error                    { return nil }
