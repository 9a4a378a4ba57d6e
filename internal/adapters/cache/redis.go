package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/nobeldash/pkg/metrics"
)

// Redis stores entries in a Redis server.
type Redis struct {
	c   *redis.Client
	ttl time.Duration
}

// NewRedis connects to addr. The connection is checked with PING.
func NewRedis(ctx context.Context, addr, pass string, db int, ttl time.Duration) (*Redis, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return &Redis{c: c, ttl: ttl}, nil
}

// Get implements Cache.Get.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheOp(BackendRedis, "miss")
		return nil, false, nil
	}
	if err != nil {
		metrics.RecordCacheOp(BackendRedis, "error")
		return nil, false, err
	}
	metrics.RecordCacheOp(BackendRedis, "hit")
	return v, true, nil
}

// Set implements Cache.Set.
func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	if err := r.c.Set(ctx, key, val, r.ttl).Err(); err != nil {
		metrics.RecordCacheOp(BackendRedis, "error")
		return err
	}
	metrics.RecordCacheOp(BackendRedis, "set")
	return nil
}

// Name implements Cache.Name.
func (r *Redis) Name() string { return BackendRedis }

// Close implements Cache.Close.
func (r *Redis) Close() error { return r.c.Close() }
