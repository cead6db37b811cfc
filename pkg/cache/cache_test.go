package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New[string, int](3)
	require.NotNil(t, c)
	assert.Equal(t, 3, c.Capacity())
	assert.Equal(t, 0, c.Len())
}

func TestNew_ClampsCapacity(t *testing.T) {
	c := New[string, int](0)
	assert.Equal(t, DefaultCapacity, c.Capacity())

	c = New[string, int](-5)
	assert.Equal(t, DefaultCapacity, c.Capacity())
}

func TestCache_GetMiss(t *testing.T) {
	c := New[string, int](2)

	value, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Zero(t, value)
	assert.Equal(t, 0, c.Len(), "miss must have no side effects")
}

func TestCache_PutGet(t *testing.T) {
	c := New[string, string](2)
	c.Put("a", "alpha")

	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", value)
}

func TestCache_PutReplaces(t *testing.T) {
	c := New[string, string](2)
	c.Put("a", "old")
	c.Put("a", "new")

	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", value)
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Capacity+1 distinct keys: "a" is the least recently touched.
	c.Put("d", 4)

	_, ok := c.Get("a")
	assert.False(t, ok, "LRU entry should be evicted")

	for _, key := range []string{"b", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "key %q should survive", key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestCache_PutRefreshesRecency(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Re-putting "a" makes "b" the LRU entry.
	c.Put("a", 10)
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)

	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, value)
}

func TestCache_CapacityOne(t *testing.T) {
	c := New[string, int](1)
	c.Put("a", 1)
	c.Put("b", 2)

	_, ok := c.Get("a")
	assert.False(t, ok)

	value, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestCache_Stats(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)

	c.Get("a")      // hit
	c.Get("a")      // hit
	c.Get("absent") // miss

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestCache_ConcurrentTouches(t *testing.T) {
	c := New[string, int](64)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("key-%d", i%100)
				c.Put(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64, "capacity bound must hold under concurrency")
}
