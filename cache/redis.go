package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/vitalvas/edgemux/mux"
)

// DefaultRedisPrefix is prepended to every Redis key.
const DefaultRedisPrefix = "edgemux:"

// Redis connects to a Redis backend for caching responses. Entries expire
// through the Redis TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a Redis cache with the options passed in.
func NewRedis(opts *redis.Options) *Redis {
	return &Redis{client: redis.NewClient(opts), prefix: DefaultRedisPrefix}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string) (*Redis, error) {
	if client == nil {
		return nil, ErrNoClient
	}

	return &Redis{client: client, prefix: prefix}, nil
}

// Ping checks the connection to the backend.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(key mux.CacheKey) string {
	return r.prefix + key.String()
}

// Match retrieves the response stored under key, or nil on a miss.
func (r *Redis) Match(ctx context.Context, key mux.CacheKey) (*mux.Result, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: redis get: %w", err)
	}

	return decodeResult(b)
}

// Put saves res under key with its Cache-Control lifetime as the TTL.
func (r *Redis) Put(ctx context.Context, key mux.CacheKey, res *mux.Result) error {
	ttl := TTL(res)
	if ttl <= 0 {
		return nil
	}

	b, err := encodeResult(res)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key(key), b, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}

	return nil
}
