package external

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

func setupMockRedis(t *testing.T) (*miniredis.Miniredis, ports.RedisConfig) {
	t.Helper()

	mockRedis := miniredis.RunT(t)
	return mockRedis, ports.RedisConfig{
		Addr:         mockRedis.Addr(),
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	}
}

func newRedisProvider(t *testing.T) (*miniredis.Miniredis, *RedisCacheProviderAdapter) {
	mockRedis, cfg := setupMockRedis(t)
	provider, err := NewRedisCacheProviderAdapter(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	return mockRedis, provider
}

func TestNewRedisCacheProviderAdapter(t *testing.T) {
	_, err := NewRedisCacheProviderAdapter(context.Background(), ports.RedisConfig{})
	assert.True(t, errors.IsConfigurationError(err))

	mockRedis, cfg := setupMockRedis(t)
	mockRedis.Close()
	_, err = NewRedisCacheProviderAdapter(context.Background(), cfg)
	assert.True(t, errors.IsExternalAPIError(err))
}

func TestRedisCacheProvider_SetGet(t *testing.T) {
	mockRedis, provider := newRedisProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.Set(ctx, "weather:london", []byte(`{"city":"London"}`), time.Minute))

	assert.True(t, mockRedis.Exists("weatherbot:weather:london"))
	value, err := provider.Get(ctx, "weather:london")
	require.NoError(t, err)
	assert.Equal(t, `{"city":"London"}`, string(value))

	exists, err := provider.Exists(ctx, "weather:london")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedisCacheProvider_Expiry(t *testing.T) {
	mockRedis, provider := newRedisProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.Set(ctx, "weather:paris", []byte("x"), time.Minute))
	mockRedis.FastForward(2 * time.Minute)

	_, err := provider.Get(ctx, "weather:paris")
	assert.True(t, errors.IsNotFoundError(err))

	stats := provider.GetStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRedisCacheProvider_Validation(t *testing.T) {
	_, provider := newRedisProvider(t)
	ctx := context.Background()

	_, err := provider.Get(ctx, "")
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, errors.IsValidationError(provider.Set(ctx, "k", nil, time.Minute)))
	assert.True(t, errors.IsValidationError(provider.Set(ctx, "k", []byte("v"), 0)))
	assert.True(t, errors.IsValidationError(provider.Delete(ctx, "")))
}

func TestRedisCacheProvider_DeleteAndClearKeepForeignKeys(t *testing.T) {
	mockRedis, provider := newRedisProvider(t)
	ctx := context.Background()

	require.NoError(t, mockRedis.Set("other-app:key", "keep"))
	require.NoError(t, provider.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, provider.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, provider.Delete(ctx, "a"))
	exists, err := provider.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, provider.Clear(ctx))
	assert.False(t, mockRedis.Exists("weatherbot:b"))
	assert.True(t, mockRedis.Exists("other-app:key"))
}

func TestRedisCacheProvider_ServerDown(t *testing.T) {
	mockRedis, provider := newRedisProvider(t)
	mockRedis.Close()

	_, err := provider.Get(context.Background(), "weather:london")

	assert.True(t, errors.IsExternalAPIError(err))
	assert.Error(t, provider.Ping(context.Background()))
}

func TestRedisCacheProvider_FromClient(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})
	provider := NewRedisCacheProviderFromClient(client, "test:")
	defer provider.Close()

	require.NoError(t, provider.Set(context.Background(), "k", []byte("v"), time.Minute))
	assert.True(t, mockRedis.Exists("test:k"))
}
