package embedder

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultCacheEntries bounds the in-memory embedding cache.
	DefaultCacheEntries = 1024

	// DefaultCacheTTL is how long a cached vector stays usable.
	DefaultCacheTTL = 1 * time.Hour
)

type cacheEntry struct {
	vector   []float32
	storedAt time.Time
}

// CachedEmbedder wraps another Embedder and memoizes vectors by input
// text. Query texts repeat heavily across requests, so the cache saves
// round-trips to the embedding backend. Entries expire after a TTL and
// the cache is size-bounded (oldest entry evicted first).
type CachedEmbedder struct {
	inner Embedder

	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	maxEntries int
	ttl        time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCachedEmbedder creates a caching wrapper around inner. Zero or
// negative limits fall back to the defaults.
func NewCachedEmbedder(inner Embedder, maxEntries int, ttl time.Duration) *CachedEmbedder {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	c := &CachedEmbedder{
		inner:      inner,
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		stop:       make(chan struct{}),
	}

	// Start cleanup goroutine
	go c.cleanupLoop()

	return c
}

// Embed returns the cached vector for text, embedding and caching it on miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.get(text); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.put(text, vec)
	return vec, nil
}

// EmbedBatch resolves cached texts locally and embeds only the misses,
// preserving input order.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := c.get(text); ok {
			results[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	embedded, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range embedded {
		results[missIdx[j]] = vec
		c.put(missTexts[j], vec)
	}
	return results, nil
}

// Dimension returns the dimensionality of the wrapped embedder.
func (c *CachedEmbedder) Dimension() int {
	return c.inner.Dimension()
}

// ModelName returns the model name of the wrapped embedder.
func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

// Len returns the number of entries currently cached, including any not
// yet swept after expiry.
func (c *CachedEmbedder) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background cleanup goroutine.
func (c *CachedEmbedder) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *CachedEmbedder) get(text string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[text]
	if !ok || time.Since(entry.storedAt) > c.ttl {
		return nil, false
	}

	// Return a copy so callers cannot mutate the cached vector.
	vec := make([]float32, len(entry.vector))
	copy(vec, entry.vector)
	return vec, true
}

func (c *CachedEmbedder) put(text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)
	c.entries[text] = &cacheEntry{vector: vec, storedAt: time.Now()}
}

// evictOldest removes the entry with the earliest store time.
// Caller must hold the write lock.
func (c *CachedEmbedder) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// cleanupLoop periodically removes expired entries.
func (c *CachedEmbedder) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *CachedEmbedder) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

var _ Embedder = (*CachedEmbedder)(nil)
