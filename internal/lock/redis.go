package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Locker with SETNX on a shared Redis instance.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis locker. Keys are namespaced under prefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Once claims key with SETNX and runs fn when the claim succeeds.
func (r *Redis) Once(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) (bool, error) {
	full := r.prefix + key
	ok, err := r.client.SetNX(ctx, full, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming lock %s: %w", full, err)
	}
	if !ok {
		return false, nil
	}
	if err := fn(ctx); err != nil {
		if delErr := r.client.Del(context.WithoutCancel(ctx), full).Err(); delErr != nil {
			return true, fmt.Errorf("%w (releasing lock %s: %v)", err, full, delErr)
		}
		return true, err
	}
	return true, nil
}

// Ping checks connectivity to Redis.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
