package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const generationKey = keyPrefix + ":generation"

// Redis shares cached pages, and their invalidation, between API instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(ctx context.Context, url, password string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: rdb, ttl: ttl}, nil
}

func (r *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *Redis) Get(ctx context.Context, generation int64, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, entryKey(generation, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, generation int64, key string, value []byte) error {
	return r.client.Set(ctx, entryKey(generation, key), value, r.ttl).Err()
}

// Invalidate increments the shared generation; old entries expire on their own.
func (r *Redis) Invalidate(ctx context.Context) error {
	return r.client.Incr(ctx, generationKey).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
