package cache_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trustkit/pkg/cache"
)

func TestLRUCache_Basic(t *testing.T) {
	t.Parallel()

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, string](3)

		c.Put("kid-a", "pem-a")
		c.Put("kid-b", "pem-b")

		val, ok := c.Get("kid-a")
		assert.True(t, ok)
		assert.Equal(t, "pem-a", val)
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, 3, c.Capacity())
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, string](3)

		val, ok := c.Get("missing")
		assert.False(t, ok)
		assert.Empty(t, val)
	})

	t.Run("replace existing", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, string](3)

		c.Put("kid-a", "pem-1")
		old, existed := c.Put("kid-a", "pem-2")
		assert.True(t, existed)
		assert.Equal(t, "pem-1", old)

		val, ok := c.Get("kid-a")
		assert.True(t, ok)
		assert.Equal(t, "pem-2", val)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("replacement is not an eviction", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, string](2)
		var evictions int
		c.SetEvictCallback(func(string, string) { evictions++ })

		c.Put("kid-a", "pem-1")
		c.Put("kid-a", "pem-2")
		assert.Zero(t, evictions)
	})
}

func TestLRUCache_Eviction(t *testing.T) {
	t.Parallel()

	t.Run("keeps capacity most recent entries", func(t *testing.T) {
		t.Parallel()
		const capacity = 8
		c := cache.NewLRUCache[string, int](capacity)

		for i := range 3 * capacity {
			c.Put(fmt.Sprintf("kid-%d", i), i)
		}

		require.Equal(t, capacity, c.Len())
		want := make([]string, 0, capacity)
		for i := 3*capacity - 1; i >= 2*capacity; i-- {
			want = append(want, fmt.Sprintf("kid-%d", i))
		}
		assert.Equal(t, want, c.Keys())
	})

	t.Run("get updates recency", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, int](3)

		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)
		c.Get("a")
		c.Put("d", 4)

		_, ok := c.Get("b")
		assert.False(t, ok, "b should have been evicted")
		_, ok = c.Get("a")
		assert.True(t, ok)
	})

	t.Run("put updates recency", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, int](3)

		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)
		c.Put("a", 10)
		c.Put("d", 4)

		assert.Equal(t, []string{"d", "a", "c"}, c.Keys())
	})

	t.Run("capacity of one", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, int](1)

		c.Put("a", 1)
		c.Put("b", 2)

		assert.Equal(t, []string{"b"}, c.Keys())
	})
}

func TestLRUCache_EvictionCallback(t *testing.T) {
	t.Parallel()
	c := cache.NewLRUCache[string, int](2)

	evicted := make(map[string]int)
	c.SetEvictCallback(func(key string, value int) {
		evicted[key] = value
	})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	assert.Equal(t, map[string]int{"a": 1}, evicted)

	c.Clear()
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, evicted)
	assert.Zero(t, c.Len())
}

func TestLRUCache_Remove(t *testing.T) {
	t.Parallel()
	c := cache.NewLRUCache[string, int](3)

	c.Put("a", 1)
	c.Put("b", 2)

	val, ok := c.Remove("b")
	assert.True(t, ok)
	assert.Equal(t, 2, val)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Remove("missing")
	assert.False(t, ok)
}

func TestLRUCache_GetOrAdd(t *testing.T) {
	t.Parallel()

	t.Run("miss calls fn and stores", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, string](2)

		val, cached, err := c.GetOrAdd("kid", func() (string, error) { return "pem", nil })
		require.NoError(t, err)
		assert.False(t, cached)
		assert.Equal(t, "pem", val)

		stored, ok := c.Get("kid")
		assert.True(t, ok)
		assert.Equal(t, "pem", stored)
	})

	t.Run("hit skips fn", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, string](2)
		c.Put("kid", "pem")

		val, cached, err := c.GetOrAdd("kid", func() (string, error) {
			t.Fatal("fn must not run on a hit")
			return "", nil
		})
		require.NoError(t, err)
		assert.True(t, cached)
		assert.Equal(t, "pem", val)
	})

	t.Run("failure stores nothing", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, string](2)
		boom := errors.New("boom")

		_, _, err := c.GetOrAdd("kid", func() (string, error) { return "", boom })
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, c.Len())
	})

	t.Run("concurrent misses converge on one value", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, int64](4)
		var calls atomic.Int64

		var wg sync.WaitGroup
		results := make([]int64, 32)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, _, err := c.GetOrAdd("kid", func() (int64, error) {
					return calls.Add(1), nil
				})
				assert.NoError(t, err)
				results[i] = v
			}(i)
		}
		wg.Wait()

		stored, ok := c.Get("kid")
		require.True(t, ok)
		assert.Equal(t, 1, c.Len())
		assert.GreaterOrEqual(t, calls.Load(), int64(1))
		for _, v := range results {
			assert.Equal(t, stored, v)
		}
	})
}

func TestLRUCache_EdgeCases(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRUCache[string, int](0) })
	assert.Panics(t, func() { cache.NewLRUCache[string, int](-1) })
}

func TestLRUCache_Concurrent(t *testing.T) {
	t.Parallel()
	const capacity = 64
	c := cache.NewLRUCache[int, int](capacity)

	var wg sync.WaitGroup
	for i := range 512 {
		wg.Add(3)
		go func(v int) { defer wg.Done(); c.Put(v, v*2) }(i)
		go func(v int) { defer wg.Done(); c.Get(v) }(i)
		go func(v int) { defer wg.Done(); c.Remove(v - 1) }(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), capacity)
	assert.Len(t, c.Keys(), c.Len())
}

func BenchmarkLRUCache_Put(b *testing.B) {
	c := cache.NewLRUCache[int, int](256)

	b.ResetTimer()
	for i := range b.N {
		c.Put(i%512, i)
	}
}

func BenchmarkLRUCache_Get(b *testing.B) {
	c := cache.NewLRUCache[int, int](256)
	for i := range 256 {
		c.Put(i, i)
	}

	b.ResetTimer()
	for i := range b.N {
		c.Get(i % 256)
	}
}
