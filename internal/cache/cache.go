// Package cache provides the query-result cache used by the listing and
// statistics endpoints, backed by Redis in production and an in-memory
// store in tests and cache-less deployments.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the cache capability consumed by services. Invalidation works
// on key prefixes because a single mutation has to clear many
// differently-parameterized cached queries for one user.
type Store interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetWithTTL stores value under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// DeleteByPrefix removes every key that starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
	// Incr increments the counter at key, starting a window-long expiry
	// when the counter is created. Used by the rate limiter.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	// Close releases the underlying connection, if any.
	Close() error
}

// redisStore implements Store on a Redis client.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &redisStore{client: client}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *redisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
