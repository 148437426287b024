package external

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bp-trend-server/internal/domain"
)

// CacheClient wraps a Redis client with caching for trend summaries. An
// identical reading window never pays for a second generation call, and a
// cached summary can be served when the generation breaker is open.
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCacheClient creates a new cache client
func NewCacheClient(config domain.CacheConfig) (*CacheClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CacheClient{
		redis:      client,
		defaultTTL: config.DefaultTTL,
	}, nil
}

// CachedTrendData represents a cached trend response with metadata
type CachedTrendData struct {
	Data      *domain.TrendResponse `json:"data"`
	CachedAt  time.Time             `json:"cached_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// GetTrendSummary retrieves a cached trend response for the request.
func (c *CacheClient) GetTrendSummary(ctx context.Context, request *domain.TrendRequest) (*domain.TrendResponse, bool, error) {
	key := c.generateTrendKey(request)

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get trend cache: %w", err)
	}

	var cached CachedTrendData
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Data, true, nil
}

// SetTrendSummary caches a trend response.
func (c *CacheClient) SetTrendSummary(ctx context.Context, request *domain.TrendRequest, data *domain.TrendResponse, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	key := c.generateTrendKey(request)

	cached := CachedTrendData{
		Data:      data,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal trend cache data: %w", err)
	}

	return c.redis.Set(ctx, key, jsonData, ttl).Err()
}

// InvalidateTrends removes all cached trend responses. Called when the
// reading set or profile changes in a way the key cannot capture.
func (c *CacheClient) InvalidateTrends(ctx context.Context) error {
	keys, err := c.redis.Keys(ctx, "trend:request:*").Result()
	if err != nil {
		return fmt.Errorf("failed to get trend cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	return c.redis.Del(ctx, keys...).Err()
}

// generateTrendKey creates a cache key from the full request payload.
func (c *CacheClient) generateTrendKey(request *domain.TrendRequest) string {
	data, err := json.Marshal(request)
	if err != nil {
		data = []byte{}
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("trend:request:%x", hash[:8]) // Use first 8 bytes of hash
}

// Ping checks if Redis connection is alive
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}
