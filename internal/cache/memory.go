// Package cache provides the in-process trend summary cache used by the
// lite deployment, where no Redis instance is available.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bp-trend-server/internal/domain"
)

// DefaultMemoryCacheSize bounds the number of cached trend responses.
const DefaultMemoryCacheSize = 256

// MemoryCache is an expiring LRU over trend responses, keyed by the request
// payload. It mirrors the Redis cache contract closely enough that callers
// can treat the two interchangeably.
type MemoryCache struct {
	lru *expirable.LRU[string, *domain.TrendResponse]
}

// NewMemoryCache creates a memory cache with the given capacity and TTL.
// A non-positive size falls back to the default; a zero TTL disables expiry.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, *domain.TrendResponse](size, nil, ttl),
	}
}

// GetTrendSummary retrieves a cached trend response for the request.
func (c *MemoryCache) GetTrendSummary(request *domain.TrendRequest) (*domain.TrendResponse, bool) {
	return c.lru.Get(trendKey(request))
}

// SetTrendSummary caches a trend response for the request.
func (c *MemoryCache) SetTrendSummary(request *domain.TrendRequest, response *domain.TrendResponse) {
	c.lru.Add(trendKey(request), response)
}

// Purge drops every cached entry.
func (c *MemoryCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// CachedGenerator decorates a trend generator with MemoryCache lookups. The
// lite deployment uses it where the server deployment uses Redis.
type CachedGenerator struct {
	generator domain.TrendGenerator
	cache     *MemoryCache
}

// NewCachedGenerator wraps generator with the given cache.
func NewCachedGenerator(generator domain.TrendGenerator, cache *MemoryCache) *CachedGenerator {
	return &CachedGenerator{generator: generator, cache: cache}
}

// GenerateTrendSummary serves from cache when possible; only successful
// responses are cached.
func (g *CachedGenerator) GenerateTrendSummary(ctx context.Context, request *domain.TrendRequest) (*domain.TrendResponse, error) {
	if response, found := g.cache.GetTrendSummary(request); found {
		return response, nil
	}

	response, err := g.generator.GenerateTrendSummary(ctx, request)
	if err != nil {
		return nil, err
	}

	g.cache.SetTrendSummary(request, response)
	return response, nil
}

func trendKey(request *domain.TrendRequest) string {
	data, err := json.Marshal(request)
	if err != nil {
		data = []byte{}
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("trend:request:%x", hash[:8])
}
