// Package cache memoizes assistant responses by (utterance, state fingerprint).
package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// ResponseCache is a bounded in-memory LRU with an optional persistent tier.
// Values are cloned on the way in and out so callers never share memory with
// the cache.
type ResponseCache struct {
	entries *lru.Cache
	group   singleflight.Group
	store   ports.ResponseStore
	logger  ports.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats summarises cache usage for the cache and doctor commands.
type Stats struct {
	Entries           int    `json:"entries"`
	Hits              int64  `json:"hits"`
	Misses            int64  `json:"misses"`
	Persistent        bool   `json:"persistent"`
	PersistentEntries int    `json:"persistent_entries"`
	Path              string `json:"path,omitempty"`
}

// NewResponseCache creates a cache holding at most maxEntries responses in
// memory. store may be nil.
func NewResponseCache(maxEntries int, store ports.ResponseStore, logger ports.Logger) (*ResponseCache, error) {
	if maxEntries <= 0 {
		maxEntries = domain.DefaultMaxCacheEntries
	}
	entries, err := lru.New(maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &ResponseCache{entries: entries, store: store, logger: logger}, nil
}

// Get implements ports.ResponseCache.
func (c *ResponseCache) Get(key string) (domain.AssistantResponse, bool) {
	if value, ok := c.entries.Get(key); ok {
		return value.(domain.AssistantResponse).Clone(), true
	}
	if c.store == nil {
		return domain.AssistantResponse{}, false
	}
	resp, ok, err := c.store.Get(key)
	if err != nil {
		c.warn("persistent cache read failed", err, key)
		return domain.AssistantResponse{}, false
	}
	if !ok {
		return domain.AssistantResponse{}, false
	}
	c.entries.Add(key, resp.Clone())
	return resp.Clone(), true
}

// Put implements ports.ResponseCache.
func (c *ResponseCache) Put(key string, resp domain.AssistantResponse) {
	c.entries.Add(key, resp.Clone())
	if c.store != nil {
		if err := c.store.Set(key, resp); err != nil {
			c.warn("persistent cache write failed", err, key)
		}
	}
}

type flightResult struct {
	resp   domain.AssistantResponse
	cached bool
}

// Do implements ports.ResponseCache. Concurrent callers with the same key
// share one computation; a failed computation is not cached and the next
// call retries. Responses that are not Cacheable are returned but never
// stored.
func (c *ResponseCache) Do(ctx context.Context, key string, compute func(context.Context) (domain.AssistantResponse, error)) (domain.AssistantResponse, bool, error) {
	if resp, ok := c.Get(key); ok {
		c.hits.Add(1)
		return resp, true, nil
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another flight may have stored the value since the lookup above.
		if resp, ok := c.Get(key); ok {
			return flightResult{resp: resp, cached: true}, nil
		}
		c.misses.Add(1)
		resp, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if resp.Cacheable() {
			c.Put(key, resp)
		}
		return flightResult{resp: resp}, nil
	})
	if err != nil {
		return domain.AssistantResponse{}, false, err
	}

	result := value.(flightResult)
	if result.cached {
		c.hits.Add(1)
	}
	return result.resp.Clone(), result.cached, nil
}

// Stats returns a snapshot of cache counters.
func (c *ResponseCache) Stats() Stats {
	stats := Stats{
		Entries:    c.entries.Len(),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Persistent: c.store != nil,
	}
	if c.store != nil {
		stats.Path = c.store.Path()
		if n, err := c.store.Len(); err == nil {
			stats.PersistentEntries = n
		}
	}
	return stats
}

// Clear drops every entry from both tiers.
func (c *ResponseCache) Clear() error {
	c.entries.Purge()
	if c.store != nil {
		return c.store.Clear()
	}
	return nil
}

// Close releases the persistent tier.
func (c *ResponseCache) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

func (c *ResponseCache) warn(msg string, err error, key string) {
	if c.logger != nil {
		c.logger.Warn(msg, map[string]interface{}{"error": err.Error(), "key": key})
	}
}

var _ ports.ResponseCache = (*ResponseCache)(nil)
