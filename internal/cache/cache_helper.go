package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheNotFound is returned when a key is absent.
	ErrCacheNotFound = errors.New("cache: key not found")
	// ErrCacheNotAvailable is returned when no redis client is configured.
	ErrCacheNotAvailable = errors.New("cache: not available")
)

// CacheHelper provides common caching operations for repositories. All
// operations degrade gracefully when redis is not configured: writes become
// no-ops and reads miss.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

// NewCacheHelper creates a new cache helper instance.
func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

// CacheConfig defines cache configuration for different data types.
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Active coupon lookups by normalized code. Deactivation invalidates.
	CouponCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "coupon:",
	}

	// Admin dashboard counters (pending count, approved today).
	StatsCacheConfig = CacheConfig{
		TTL:    1 * time.Minute,
		Prefix: "stats:",
	}

	// Profile role lookups for the admin gate.
	ProfileCacheConfig = CacheConfig{
		TTL:    2 * time.Minute,
		Prefix: "profile:",
	}
)

// GetCacheKey generates a cache key with prefix.
func (c *CacheHelper) GetCacheKey(key string) string {
	return fmt.Sprintf("%s%s", c.prefix, key)
}

// Get retrieves and unmarshals data from cache.
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.GetCacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

// Set marshals and stores data in cache.
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // graceful degradation when cache not available
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	return c.client.Set(ctx, c.GetCacheKey(key), data, ttl).Err()
}

// Delete removes one or more keys from cache.
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}

	return c.client.Del(ctx, cacheKeys...).Err()
}

// HealthCheck pings redis.
func (c *CacheHelper) HealthCheck(ctx context.Context) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}
	return c.client.Ping(ctx).Err()
}
