package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tourwithmark/engagement/config"
)

// Cache key prefix for aggregate responses.
const cachePrefix = "cache:engagement:"

// Cache keys for the aggregate endpoints.
const (
	CacheKeyStats     = cachePrefix + "stats"
	CacheKeyAnalytics = cachePrefix + "analytics"
	CacheKeyDashboard = cachePrefix + "dashboard"
)

// Cache is a best-effort Redis read cache. A nil *Cache or an unreachable server means
// every Get misses and every Set/Invalidate is a no-op.
type Cache struct {
	rc     *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache returns nil when Redis is not configured.
func NewCache(cfg config.AppConfig, logger *zap.Logger) *Cache {
	if !cfg.RedisEnabled() {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	// Ping only to log; the cache degrades to misses when Redis is down
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, aggregate cache will miss", zap.Error(err))
	}
	return NewCacheWithClient(rc, cfg.CacheTTL(), logger)
}

// NewCacheWithClient wraps an existing client.
func NewCacheWithClient(rc *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rc: rc, ttl: ttl, logger: logger}
}

// GetBytes returns cached bytes for key.
func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := c.rc.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

// SetBytes stores b under key with the configured TTL.
func (c *Cache) SetBytes(ctx context.Context, key string, b []byte) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.rc.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate deletes keys. Failures are logged; the TTL bounds staleness.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.rc.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rc.Close()
}
