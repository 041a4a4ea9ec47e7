package repository

import (
	"context"
	"time"
)

// CacheRepository is a derived, disposable projection over the store. None of
// its methods return errors: when the backend is unreachable every read is a
// miss and every write a no-op, so callers never fail on cache trouble.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// InvalidatePattern removes every key matching a glob pattern, e.g.
	// "category:fiction*" clears all cached pages of one category.
	InvalidatePattern(ctx context.Context, pattern string)
	// BuildKey joins a prefix and ordered parts so identical logical queries
	// always collide on the same key.
	BuildKey(prefix string, parts ...string) string
}
