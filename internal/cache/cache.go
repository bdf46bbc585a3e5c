package cache

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"photo-culler/internal/logging"
	"photo-culler/internal/metrics"
	"photo-culler/internal/resize"
)

// DefaultCapacity is the number of results kept when none is configured.
const DefaultCapacity = 5

// ResultCache is a bounded, pop-on-read LRU of resize results.
type ResultCache struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[uint64, *resize.Result]
	capacity int
	bytes    int64

	hits      uint64
	misses    uint64
	inserts   uint64
	evictions uint64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries   int    `json:"entries"`
	Capacity  int    `json:"capacity"`
	Bytes     int64  `json:"bytes"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Inserts   uint64 `json:"inserts"`
	Evictions uint64 `json:"evictions"`
}

// New creates a cache holding at most capacity results.
func New(capacity int) (*ResultCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	c := &ResultCache{capacity: capacity}

	lru, err := simplelru.NewLRU[uint64, *resize.Result](capacity, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	c.lru = lru

	return c, nil
}

// onEvict runs under c.mu for every entry leaving the LRU, whether evicted,
// removed or purged.
func (c *ResultCache) onEvict(_ uint64, r *resize.Result) {
	c.bytes -= int64(len(r.Pixels))
}

// GetAndRemove returns the result cached for index and removes it.
func (c *ResultCache) GetAndRemove(index uint64) (*resize.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.lru.Peek(index)
	if !ok {
		c.misses++
		metrics.CacheMisses.Inc()
		return nil, false
	}

	c.lru.Remove(index)
	c.hits++
	metrics.CacheHits.Inc()
	c.publish()
	return r, true
}

// Contains reports whether a result for index is cached. It does not touch
// recency.
func (c *ResultCache) Contains(index uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(index)
}

// Insert stores r under index, replacing any previous entry and evicting
// the least recently used entry if the cache is full.
func (c *ResultCache) Insert(index uint64, r *resize.Result) {
	if r == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Add reports evictions but not replacements; removing first keeps the
	// byte count exact.
	c.lru.Remove(index)
	c.bytes += int64(len(r.Pixels))

	if evicted := c.lru.Add(index, r); evicted {
		c.evictions++
		metrics.CacheEvictions.Inc()
		logging.Debug("Result cache full, evicted least recently used entry")
	}

	c.inserts++
	metrics.CacheInserts.Inc()
	c.publish()
}

// Purge drops every entry.
func (c *ResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.lru.Len()
	c.lru.Purge()
	c.publish()

	if n > 0 {
		logging.Debug("Result cache purged %d entries", n)
	}
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Capacity returns the maximum number of cached results.
func (c *ResultCache) Capacity() int {
	return c.capacity
}

// Keys returns the cached indices, oldest first.
func (c *ResultCache) Keys() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Stats returns a snapshot of the cache counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Entries:   c.lru.Len(),
		Capacity:  c.capacity,
		Bytes:     c.bytes,
		Hits:      c.hits,
		Misses:    c.misses,
		Inserts:   c.inserts,
		Evictions: c.evictions,
	}
}

// publish updates the size gauges. Callers hold c.mu.
func (c *ResultCache) publish() {
	metrics.CacheEntries.Set(float64(c.lru.Len()))
	metrics.CacheBytes.Set(float64(c.bytes))
}
