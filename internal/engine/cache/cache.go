package cache

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// Cache memoises indicator results for a dataset generation.
type Cache interface {
	Get(key Key) (types.IndicatorResult, bool)
	Set(key Key, result types.IndicatorResult)
	Len() int
	Reset()
}

// Key identifies one indicator computation over one filtered dataset.
type Key struct {
	Generation string
	TimeRange  types.TimeRange
	Indicator  types.IndicatorType
	Params     string
}

// NewKey builds a key, encoding params in their effective form.
func NewKey(generation string, timeRange types.TimeRange, indicator types.IndicatorType, params []any) Key {
	encoded := make([]string, len(params))
	for i, p := range params {
		encoded[i] = fmt.Sprintf("%v", p)
	}

	return Key{
		Generation: generation,
		TimeRange:  timeRange,
		Indicator:  indicator,
		Params:     strings.Join(encoded, ","),
	}
}

// CacheV1 is a bounded, mutex-guarded result cache. Entries belong to a single
// dataset generation: storing a result for a newer generation evicts the rest.
// Cached series are shared with callers and must not be modified.
type CacheV1 struct {
	mu         sync.Mutex
	entries    map[Key]types.IndicatorResult
	generation string
	maxEntries int
}

// NewCacheV1 creates a cache holding at most maxEntries results.
// A non-positive maxEntries disables the bound.
func NewCacheV1(maxEntries int) Cache {
	return &CacheV1{
		mu:         sync.Mutex{},
		entries:    make(map[Key]types.IndicatorResult),
		generation: "",
		maxEntries: maxEntries,
	}
}

// Get implements cache.Cache.
func (c *CacheV1) Get(key Key) (types.IndicatorResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.entries[key]

	return result, ok
}

// Set implements cache.Cache.
func (c *CacheV1) Set(key Key, result types.IndicatorResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key.Generation != c.generation {
		c.entries = make(map[Key]types.IndicatorResult)
		c.generation = key.Generation
	}

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		// full: start over rather than track recency
		c.entries = make(map[Key]types.IndicatorResult)
	}

	c.entries[key] = result
}

// Len implements cache.Cache.
func (c *CacheV1) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Reset implements cache.Cache.
func (c *CacheV1) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]types.IndicatorResult)
	c.generation = ""
}
