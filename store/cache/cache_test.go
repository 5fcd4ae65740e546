package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", "v")
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", got)

	_, ok = c.Get(ctx, "missing")
	require.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL(ctx, "k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", 1)
	c.Delete(ctx, "k")
	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
}

func TestCapacityEviction(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute, MaxItems: 2})
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL(ctx, "a", 1, time.Second)
	c.SetWithTTL(ctx, "b", 2, time.Minute)
	c.SetWithTTL(ctx, "c", 3, time.Minute)

	// "a" expires soonest, so it is the one pushed out.
	_, ok := c.Get(ctx, "a")
	require.False(t, ok)
	_, ok = c.Get(ctx, "b")
	require.True(t, ok)
	_, ok = c.Get(ctx, "c")
	require.True(t, ok)
}
