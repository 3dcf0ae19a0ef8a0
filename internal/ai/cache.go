package ai

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// CachePrefixLength is how many prompt characters take part in the cache
	// key. Distinct prompts sharing this prefix (with equal provider, token
	// limit and temperature) collide and return the same cached text.
	CachePrefixLength = 100

	DefaultCacheSize = 512
	DefaultCacheTTL  = time.Hour
)

// Cache stores generated text between calls.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// CacheKey builds the lookup key for a request on the named provider.
func CacheKey(provider string, req Request) string {
	prefix := req.Prompt
	if runes := []rune(prefix); len(runes) > CachePrefixLength {
		prefix = string(runes[:CachePrefixLength])
	}
	return fmt.Sprintf("%s_%s_%d_%s", provider, prefix, req.MaxTokens, strconv.FormatFloat(req.Temperature, 'f', -1, 64))
}

// MemoryCache is an in-process LRU. Entries are evicted when the cache holds
// more than size items or when they are older than ttl.
type MemoryCache struct {
	lru *expirable.LRU[string, string]
}

// NewMemoryCache returns a bounded cache. Non-positive arguments fall back to
// DefaultCacheSize and DefaultCacheTTL.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.lru.Add(key, value)
}

// Len reports the number of live entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
