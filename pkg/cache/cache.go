// Package cache provides a bounded LRU cache for decoded graph entities.
//
// The graph engine keeps one cache instance for nodes and one for edges, so
// repeated lookups skip the storage backend and the decode step entirely.
//
// Features:
//   - LRU eviction for bounded memory
//   - Thread-safe operations behind a single mutex
//   - Cache hit/miss statistics
//
// Usage:
//
//	nodes := cache.New[graph.NodeID, *graph.Node](1000)
//
//	if node, ok := nodes.Get(id); ok {
//		return node // cache hit
//	}
//
//	node := fetchAndDecode(id)
//	nodes.Put(id, node)
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is used when New is given a capacity below 1.
const DefaultCapacity = 1000

// Cache is a thread-safe LRU cache.
//
// The cache uses:
//   - Hash map for O(1) lookups
//   - Doubly-linked list for recency ordering
//
// A Get hit marks the entry most-recently-used. A Put beyond capacity evicts
// exactly the least-recently-touched entry. Capacity is fixed for the
// cache's lifetime. The cache never performs I/O and never returns errors.
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	list     *list.List
	items    map[K]*list.Element

	hits   uint64
	misses uint64
}

// entry holds a cached key-value pair inside the recency list.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a cache holding at most capacity entries. A capacity below 1
// is clamped to DefaultCapacity.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		list:     list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the cached value for key.
//
// Returns (value, true) on a hit and moves the entry to the front of the
// recency list. A miss returns the zero value and false with no side
// effects.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		atomic.AddUint64(&c.misses, 1)
		var zero V
		return zero, false
	}
	c.list.MoveToFront(elem)
	value := elem.Value.(*entry[K, V]).value
	c.mu.Unlock()

	atomic.AddUint64(&c.hits, 1)
	return value, true
}

// Put adds or replaces the value for key and marks it most-recently-used.
//
// If inserting a new key pushes the cache past capacity, the
// least-recently-used entry is evicted.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[K, V]).value = value
		c.list.MoveToFront(elem)
		return
	}

	c.items[key] = c.list.PushFront(&entry[K, V]{key: key, value: value})

	for c.list.Len() > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the entry at the back of the recency list.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest() {
	elem := c.list.Back()
	if elem == nil {
		return
	}
	c.list.Remove(elem)
	delete(c.items, elem.Value.(*entry[K, V]).key)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}

// Capacity returns the fixed capacity the cache was created with.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats reports cumulative hit/miss counters.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Stats returns a snapshot of the cache's hit/miss counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadUint64(&c.hits),
		Misses: atomic.LoadUint64(&c.misses),
	}
}
