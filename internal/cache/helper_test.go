package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	want := cachedValue{Name: "ripple", Count: 3}
	require.NoError(t, SetJSON(ctx, "k", want, time.Minute))

	var got cachedValue
	found, err := GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	found, err = GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedValue) func() error {
		return func() error {
			calls++
			*dest = cachedValue{Name: "fetched", Count: calls}
			return nil
		}
	}

	var first cachedValue
	require.NoError(t, CacheAside(ctx, "aside", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)

	// Second read is served from the cache; fetch is not called again.
	var second cachedValue
	require.NoError(t, CacheAside(ctx, "aside", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	// Invalidation forces a refetch.
	require.NoError(t, Invalidate(ctx, "aside"))
	var third cachedValue
	require.NoError(t, CacheAside(ctx, "aside", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestCacheAsideFetchError(t *testing.T) {
	withMiniredis(t)

	wantErr := errors.New("boom")
	var dest cachedValue
	err := CacheAside(context.Background(), "err", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestHelpersWithoutClient(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	// Everything degrades to a no-op without Redis.
	var got cachedValue
	found, err := GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "k", cachedValue{}, time.Minute))
	require.NoError(t, Invalidate(ctx, "k"))

	calls := 0
	require.NoError(t, CacheAside(ctx, "k", &got, time.Minute, func() error {
		calls++
		got = cachedValue{Name: "direct"}
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "direct", got.Name)
}
