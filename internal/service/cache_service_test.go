package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("connection refused")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()

	var out []string
	assert.False(t, cache.Get(ctx, "cycle:u:predictions", &out))

	cache.Set(ctx, "cycle:u:predictions", []string{"2024-03-25"}, 0)
	require.True(t, cache.Get(ctx, "cycle:u:predictions", &out))
	assert.Equal(t, []string{"2024-03-25"}, out)

	require.NoError(t, cache.Invalidate(ctx, "cycle:u:*"))
	assert.False(t, cache.Get(ctx, "cycle:u:predictions", &out))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(2), snap.CacheMisses)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)

	cache.Set(context.Background(), "k", 1, 0)
	assert.Empty(t, repo.items)
	assert.False(t, cache.Enabled())

	var nilCache *CacheService
	var dest int
	assert.False(t, nilCache.Get(context.Background(), "k", &dest))
	assert.NoError(t, nilCache.Invalidate(context.Background(), "k*"))
}

func TestCacheServiceBackendFailureIsMiss(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cache := NewCacheService(failingCacheRepo{}, nil, time.Minute, zap.New(core), true)
	ctx := context.Background()

	var dest int
	assert.False(t, cache.Get(ctx, "k", &dest))
	cache.Set(ctx, "k", 1, 0)
	assert.Error(t, cache.Invalidate(ctx, "k*"))

	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, "cache get failed", logs.All()[0].Message)
}
