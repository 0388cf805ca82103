package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache("cart")
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("bytes"), time.Minute))
	require.NoError(t, c.Set(ctx, "n", 42, 0))

	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	got, _ = c.Get(ctx, "b")
	assert.Equal(t, "bytes", got)

	got, _ = c.Get(ctx, "n")
	assert.Equal(t, "42", got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache("cart").(*memoryCache)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))

	now = now.Add(999 * time.Millisecond)
	got, _ := c.Get(ctx, "k")
	assert.Equal(t, "v", got)

	now = now.Add(time.Millisecond)
	got, _ = c.Get(ctx, "k")
	assert.Empty(t, got)
	assert.NotContains(t, c.entries, "k")
}

func TestMemoryCacheSetIfAbsent(t *testing.T) {
	c := NewMemoryCache("cart").(*memoryCache)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := c.SetIfAbsent(ctx, "k", "first", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetIfAbsent(ctx, "k", "second", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	got, _ := c.Get(ctx, "k")
	assert.Equal(t, "first", got)

	now = now.Add(time.Second)
	ok, _ = c.SetIfAbsent(ctx, "k", "third", time.Second)
	assert.True(t, ok, "an expired entry can be claimed again")

	require.NoError(t, c.Delete(ctx, "k"))
	ok, _ = c.SetIfAbsent(ctx, "k", "fourth", 0)
	assert.True(t, ok)
}

func TestMemoryCacheSweepsExpiredOnSet(t *testing.T) {
	c := NewMemoryCache("cart").(*memoryCache)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, "v", time.Second))
	}
	require.NoError(t, c.Set(ctx, "keep", "v", time.Hour))
	require.NoError(t, c.Set(ctx, "forever", "v", 0))
	assert.Len(t, c.entries, 5)

	// expired but the next sweep is not due yet
	now = now.Add(2 * time.Second)
	require.NoError(t, c.Set(ctx, "d", "v", time.Second))
	assert.Len(t, c.entries, 6)

	now = now.Add(sweepInterval)
	require.NoError(t, c.Set(ctx, "e", "v", time.Second))
	assert.ElementsMatch(t, []string{"keep", "forever", "e"}, keys(c.entries))
}

func keys(m map[string]memoryEntry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
