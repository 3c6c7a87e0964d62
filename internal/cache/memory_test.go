package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPageCacheGetSet(t *testing.T) {
	c := NewMemoryPageCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "/")
	assert.ErrorIs(t, err, ErrCacheMiss)

	entry := &Entry{Status: 200, ContentType: "text/html", Body: []byte("<html>")}
	require.NoError(t, c.Set(ctx, "/", entry, time.Minute))

	got, err := c.Get(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	// Distinct query strings are distinct keys.
	_, err = c.Get(ctx, "/?page=2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryPageCacheExpiry(t *testing.T) {
	c := NewMemoryPageCache()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "/", &Entry{Status: 200, Body: []byte("x")}, 20*time.Second))

	_, err := c.Get(ctx, "/")
	require.NoError(t, err)

	now = now.Add(21 * time.Second)
	_, err = c.Get(ctx, "/")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryPageCacheClear(t *testing.T) {
	c := NewMemoryPageCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "/", &Entry{Status: 200, Body: []byte("x")}, time.Minute))
	require.NoError(t, c.Set(ctx, "/?page=2", &Entry{Status: 200, Body: []byte("y")}, time.Minute))

	require.NoError(t, c.Clear(ctx))

	_, err := c.Get(ctx, "/")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "/?page=2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
