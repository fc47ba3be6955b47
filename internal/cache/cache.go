// Package cache provides a small get/set/delete key-value cache with TTLs,
// used to memoize expensive aggregate read paths such as trending posts and
// popular searches.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the process-facing cache contract. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
