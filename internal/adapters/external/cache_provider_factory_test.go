package external

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

func TestCacheProviderFactory_CreateCacheProvider(t *testing.T) {
	factory := NewCacheProviderFactory()
	ctx := context.Background()

	memory, err := factory.CreateCacheProvider(ctx, ports.CacheConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCacheProvider{}, memory)

	_, redisCfg := setupMockRedis(t)
	redisCache, err := factory.CreateCacheProvider(ctx, ports.CacheConfig{Type: "Redis", Redis: redisCfg})
	require.NoError(t, err)
	assert.IsType(t, &RedisCacheProviderAdapter{}, redisCache)

	_, err = factory.CreateCacheProvider(ctx, ports.CacheConfig{Type: "memcached"})
	assert.True(t, errors.IsConfigurationError(err))
}

func TestMemoryCacheProvider_SetGetExpire(t *testing.T) {
	cache := NewMemoryCacheProvider(0)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "weather:london", []byte("v"), time.Minute))

	value, err := cache.Get(ctx, "weather:london")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	now = now.Add(time.Minute)
	_, err = cache.Get(ctx, "weather:london")
	assert.True(t, errors.IsNotFoundError(err))
	assert.Equal(t, 0, cache.Len())

	stats := cache.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 0.0001)
}

func TestMemoryCacheProvider_EvictsSoonestExpiry(t *testing.T) {
	cache := NewMemoryCacheProvider(2)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, cache.Set(ctx, "new", []byte("3"), time.Hour))

	assert.Equal(t, 2, cache.Len())
	exists, err := cache.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, cache.Set(ctx, "long", []byte("updated"), time.Hour))
	assert.Equal(t, 2, cache.Len())
}

func TestMemoryCacheProvider_StoresCopy(t *testing.T) {
	cache := NewMemoryCacheProvider(0)
	ctx := context.Background()
	value := []byte("abc")

	require.NoError(t, cache.Set(ctx, "k", value, time.Minute))
	value[0] = 'x'

	stored, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(stored))
}

func TestMemoryCacheProvider_DeleteClearValidation(t *testing.T) {
	cache := NewMemoryCacheProvider(0)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "a"))
	assert.Equal(t, 1, cache.Len())
	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())

	assert.True(t, errors.IsValidationError(cache.Set(ctx, "", []byte("1"), time.Minute)))
	assert.True(t, errors.IsValidationError(cache.Set(ctx, "k", []byte("1"), -time.Second)))
	_, err := cache.Exists(ctx, "")
	assert.True(t, errors.IsValidationError(err))
}
