package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/catalog-service/pkg/metrics"
)

// CacheRepoImpl implements repository.CacheRepository on Redis. The cache is
// advisory: when Redis is unreachable every read is a miss and every write a
// no-op, so callers never fail on cache trouble.
type CacheRepoImpl struct {
	client   *redis.Client
	degraded bool
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewCacheRepo pings Redis once; on failure the cache starts degraded and
// every operation short-circuits.
func NewCacheRepo(client *redis.Client, m *metrics.Metrics, logger *zap.Logger) *CacheRepoImpl {
	c := &CacheRepoImpl{client: client, metrics: m, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("cache backend unreachable, running degraded", zap.Error(err))
		c.degraded = true
	}
	return c
}

func (c *CacheRepoImpl) Get(ctx context.Context, key string) (string, bool) {
	if c.degraded {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
			c.count("get", "error")
		} else {
			c.count("get", "miss")
		}
		return "", false
	}
	c.count("get", "hit")
	return val, true
}

func (c *CacheRepoImpl) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if c.degraded {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		c.count("set", "error")
		return
	}
	c.count("set", "ok")
}

func (c *CacheRepoImpl) Delete(ctx context.Context, key string) {
	if c.degraded {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		c.count("del", "error")
		return
	}
	c.count("del", "ok")
}

// InvalidatePattern removes every key matching a glob pattern. Uses SCAN in
// batches rather than KEYS so a large keyspace never blocks the server.
func (c *CacheRepoImpl) InvalidatePattern(ctx context.Context, pattern string) {
	if c.degraded {
		return
	}
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.logger.Warn("cache pattern scan failed", zap.String("pattern", pattern), zap.Error(err))
			c.count("invalidate", "error")
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.Warn("cache pattern delete failed", zap.String("pattern", pattern), zap.Error(err))
				c.count("invalidate", "error")
				return
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.count("invalidate", "ok")
}

// BuildKey joins a prefix and ordered parts with colons so identical logical
// queries always collide on the same key.
func (c *CacheRepoImpl) BuildKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

func (c *CacheRepoImpl) count(op, result string) {
	if c.metrics != nil {
		c.metrics.CacheOpsTotal.WithLabelValues(op, result).Inc()
	}
}
