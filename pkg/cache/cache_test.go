package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), mr
}

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", cachedValue{Name: "test_login", Count: 3}, time.Hour))

	var got cachedValue
	hit, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, cachedValue{Name: "test_login", Count: 3}, got)
}

func TestCacheMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	var got cachedValue
	hit, err := store.Get(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheZeroTTLMeansAbsent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", cachedValue{Name: "a"}, time.Hour))
	require.NoError(t, store.Set(ctx, "k1", cachedValue{Name: "b"}, 0))

	var got cachedValue
	hit, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", cachedValue{Name: "a"}, time.Second))
	mr.FastForward(2 * time.Second)

	var got cachedValue
	hit, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheOverwrite(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", cachedValue{Name: "old"}, time.Hour))
	require.NoError(t, store.Set(ctx, "k1", cachedValue{Name: "new"}, time.Hour))

	var got cachedValue
	hit, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "new", got.Name)
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set(keyPrefix+"k1", "not json at all"))

	var got cachedValue
	hit, err := store.Get(context.Background(), "k1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheCorruptPayloadIsMiss(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", "just a string", time.Hour))

	var got cachedValue
	hit, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	// entry is still readable under its real type
	var s string
	hit, err = store.Get(ctx, "k1", &s)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "just a string", s)
}

func TestCacheSweep(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "live", cachedValue{Name: "a"}, time.Hour))
	require.NoError(t, mr.Set(keyPrefix+"corrupt", "garbage"))

	require.NoError(t, store.Sweep(ctx))

	assert.False(t, mr.Exists(keyPrefix+"corrupt"))
	assert.True(t, mr.Exists(keyPrefix+"live"))
}

func TestCacheClear(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", cachedValue{}, time.Hour))
	require.NoError(t, store.Set(ctx, "k2", cachedValue{}, time.Hour))
	require.NoError(t, mr.Set("unrelated", "stays"))

	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists(keyPrefix+"k1"))
	assert.False(t, mr.Exists(keyPrefix+"k2"))
	assert.True(t, mr.Exists("unrelated"))
}
