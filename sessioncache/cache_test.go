package sessioncache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoubd/filevault/sessioncache"
)

func newCache(t *testing.T) *sessioncache.Cache {
	t.Helper()
	cache, err := sessioncache.Open(sessioncache.Options{InMemory: true})
	require.NoError(t, err, "open in-memory cache")
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestCache_SetGet(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		err := cache.SetWithTTL(ctx, "auth_token-1", "user-1", time.Hour)
		assert.NoError(t, err)

		value, ok, err := cache.Get(ctx, "auth_token-1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "user-1", value)
	})

	t.Run("absent key is a miss not an error", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, "auth_nope")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("overwrite", func(t *testing.T) {
		assert.NoError(t, cache.SetWithTTL(ctx, "auth_token-2", "user-a", time.Hour))
		assert.NoError(t, cache.SetWithTTL(ctx, "auth_token-2", "user-b", time.Hour))

		value, ok, err := cache.Get(ctx, "auth_token-2")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "user-b", value)
	})
}

func TestCache_TTL(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	err := cache.SetWithTTL(ctx, "auth_short", "user-1", 100*time.Millisecond)
	require.NoError(t, err)

	_, ok, err := cache.Get(ctx, "auth_short")
	assert.NoError(t, err)
	assert.True(t, ok, "entry should be live before its TTL elapses")

	time.Sleep(200 * time.Millisecond)

	_, ok, err = cache.Get(ctx, "auth_short")
	assert.NoError(t, err)
	assert.False(t, ok, "entry should read as absent after its TTL elapses")
}

func TestCache_Delete(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	t.Run("removes the entry", func(t *testing.T) {
		require.NoError(t, cache.SetWithTTL(ctx, "auth_token-3", "user-1", time.Hour))
		assert.NoError(t, cache.Delete(ctx, "auth_token-3"))

		_, ok, err := cache.Get(ctx, "auth_token-3")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("absent key is not an error", func(t *testing.T) {
		assert.NoError(t, cache.Delete(ctx, "auth_never-existed"))
	})
}

func TestCache_Ping(t *testing.T) {
	ctx := context.Background()

	t.Run("open cache", func(t *testing.T) {
		cache := newCache(t)
		assert.True(t, cache.Ping(ctx))
	})

	t.Run("closed cache", func(t *testing.T) {
		cache, err := sessioncache.Open(sessioncache.Options{InMemory: true})
		require.NoError(t, err)
		require.NoError(t, cache.Close())

		assert.False(t, cache.Ping(ctx))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cache := newCache(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		assert.False(t, cache.Ping(cancelled))
	})
}

func TestCache_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := sessioncache.Open(sessioncache.Options{Path: dir})
	require.NoError(t, err)

	require.NoError(t, cache.SetWithTTL(ctx, "auth_persist", "user-1", time.Hour))
	require.NoError(t, cache.Close())

	// Entries survive a close/reopen cycle.
	cache, err = sessioncache.Open(sessioncache.Options{Path: dir})
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	value, ok, err := cache.Get(ctx, "auth_persist")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-1", value)
}
