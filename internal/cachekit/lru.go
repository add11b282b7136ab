// Package cachekit provides bounded in-memory and TTL-based on-disk
// caches shared by the search index, catalog loader, and installer.
package cachekit

import (
	"container/list"
	"sync"
	"unsafe"

	"rsmgr/internal/metrics"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a size- and memory-bounded least-recently-used cache with O(1)
// Get, safe for concurrent use. Set and Invalidate recompute the memory
// estimate over every entry, so they are linear in the cache size.
type LRU[K comparable, V any] struct {
	mu          sync.Mutex
	maxSize     int
	maxMemory   int64 // bytes, 0 = unlimited
	ll          *list.List
	items       map[K]*list.Element
	memoryBytes int64
	hits        int64
	misses      int64
	name        string // metrics label; empty means "don't record"
}

// WithName sets the cache label used when reporting hits/misses to
// internal/metrics, and returns the cache for chaining at construction
// time. A cache with no name never touches the metrics package.
func (c *LRU[K, V]) WithName(name string) *LRU[K, V] {
	c.name = name
	return c
}

// NewLRU returns a cache holding at most maxSize items and, if
// maxMemoryMB > 0, evicting further once its rough memory estimate exceeds
// that many megabytes.
func NewLRU[K comparable, V any](maxSize int, maxMemoryMB float64) *LRU[K, V] {
	return &LRU[K, V]{
		maxSize:   maxSize,
		maxMemory: int64(maxMemoryMB * 1024 * 1024),
		ll:        list.New(),
		items:     make(map[K]*list.Element),
	}
}

// Get returns the cached value for key and whether it was present, moving
// it to the most-recently-used position on a hit.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.ll.MoveToFront(elem)
		c.hits++
		if c.name != "" {
			metrics.CacheHitsTotal.WithLabelValues(c.name, "hit").Inc()
		}
		return elem.Value.(*entry[K, V]).value, true
	}
	c.misses++
	if c.name != "" {
		metrics.CacheHitsTotal.WithLabelValues(c.name, "miss").Inc()
	}
	var zero V
	return zero, false
}

// Set stores value under key, evicting least-recently-used entries if the
// cache is now over its size or memory bound.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.ll.Remove(elem)
		delete(c.items, key)
	}

	elem := c.ll.PushFront(&entry[K, V]{key: key, value: value})
	c.items[key] = elem
	c.memoryBytes = c.estimateMemory()

	for c.ll.Len() > c.maxSize {
		c.evictOldest()
	}
	for c.maxMemory > 0 && c.memoryBytes > c.maxMemory && c.ll.Len() > 0 {
		c.evictOldest()
	}
}

func (c *LRU[K, V]) evictOldest() {
	oldest := c.ll.Back()
	if oldest == nil {
		return
	}
	c.ll.Remove(oldest)
	delete(c.items, oldest.Value.(*entry[K, V]).key)
	c.memoryBytes = c.estimateMemory()
}

// Invalidate removes key from the cache, if present.
func (c *LRU[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.ll.Remove(elem)
		delete(c.items, key)
		c.memoryBytes = c.estimateMemory()
	}
}

// Clear empties the cache and resets its hit/miss counters.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[K]*list.Element)
	c.memoryBytes = 0
	c.hits = 0
	c.misses = 0
}

// HitRate returns the cache's hit rate as a percentage (0-100).
func (c *LRU[K, V]) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total) * 100
}

// MemoryUsageMB returns the cache's rough current memory estimate in MB.
func (c *LRU[K, V]) MemoryUsageMB() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.memoryBytes) / (1024 * 1024)
}

// Len returns the number of cached items.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// estimateMemory gives a rough size estimate in the spirit of Python's
// sys.getsizeof-based accounting: Go has no equivalent introspection, so
// this counts the fixed struct overhead per entry plus best-effort sizing
// for the common key/value shapes (strings, byte slices) this module
// actually caches.
func (c *LRU[K, V]) estimateMemory() int64 {
	var total int64
	const overhead = int64(unsafe.Sizeof(entry[K, V]{})) + 48 // list.Element + map bucket overhead
	for _, elem := range c.items {
		e := elem.Value.(*entry[K, V])
		total += overhead
		total += sizeOf(e.key)
		total += sizeOf(e.value)
	}
	return total
}

func sizeOf(v any) int64 {
	switch x := v.(type) {
	case string:
		return int64(len(x))
	case []byte:
		return int64(len(x))
	default:
		return int64(unsafe.Sizeof(v))
	}
}
