// Package lock provides a cross-process "run once per key" guard used to keep
// replicas from running the same scheduled slot twice.
package lock

import (
	"context"
	"time"
)

// Locker runs fn at most once per key until the key expires.
type Locker interface {
	// Once claims key for ttl and runs fn. It reports false without running fn
	// when another holder already claimed the key. If fn fails the claim is
	// released so the slot can be retried.
	Once(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) (bool, error)
}

// Noop is a Locker that always runs fn. It is used when no Redis is configured.
type Noop struct{}

// Once runs fn unconditionally.
func (Noop) Once(ctx context.Context, _ string, _ time.Duration, fn func(context.Context) error) (bool, error) {
	return true, fn(ctx)
}
