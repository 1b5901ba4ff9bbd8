package external

import (
	"context"
	"fmt"
	"strings"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const defaultMemoryCacheEntries = 10000

// StatsCacheProvider is a cache backend that also reports hit and miss counts
type StatsCacheProvider interface {
	ports.CacheProvider
	ports.CacheMetrics
}

type CacheProviderFactory struct{}

func NewCacheProviderFactory() *CacheProviderFactory {
	return &CacheProviderFactory{}
}

// CreateCacheProvider builds the backend named by cfg.Type ("memory" or "redis")
func (f *CacheProviderFactory) CreateCacheProvider(ctx context.Context, cfg ports.CacheConfig) (StatsCacheProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "memory":
		return NewMemoryCacheProvider(defaultMemoryCacheEntries), nil
	case "redis":
		return NewRedisCacheProviderAdapter(ctx, cfg.Redis)
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported cache type: %s", cfg.Type), nil)
	}
}
