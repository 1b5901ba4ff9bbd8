package external

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// cacheCounters tracks hits and misses for a cache backend
type cacheCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *cacheCounters) RecordHit()  { c.hits.Add(1) }
func (c *cacheCounters) RecordMiss() { c.misses.Add(1) }

func (c *cacheCounters) GetStats() ports.CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	total := hits + misses
	hitRatio := float64(0)
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return ports.CacheStats{
		Hits:        hits,
		Misses:      misses,
		TotalOps:    total,
		HitRatio:    hitRatio,
		LastUpdated: time.Now(),
	}
}

// MemoryCacheProvider is a process-local CacheProvider. Expired entries are
// dropped when read; once maxEntries is reached the entry closest to expiry
// is evicted.
type MemoryCacheProvider struct {
	cacheCounters

	mutex      sync.RWMutex
	data       map[string]memoryCacheItem
	maxEntries int
	now        func() time.Time
}

type memoryCacheItem struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCacheProvider creates an in-memory cache; maxEntries <= 0 means unbounded
func NewMemoryCacheProvider(maxEntries int) *MemoryCacheProvider {
	return &MemoryCacheProvider{
		data:       make(map[string]memoryCacheItem),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		c.RecordMiss()
		return nil, errors.NewNotFoundError("cache miss")
	}
	if !c.now().Before(item.expiresAt) {
		c.mutex.Lock()
		if current, ok := c.data[key]; ok && current.expiresAt.Equal(item.expiresAt) {
			delete(c.data, key)
		}
		c.mutex.Unlock()
		c.RecordMiss()
		return nil, errors.NewNotFoundError("cache miss")
	}

	c.RecordHit()
	return item.data, nil
}

func (c *MemoryCacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("cache value cannot be nil")
	}
	if ttl <= 0 {
		return errors.NewValidationError("cache TTL must be positive")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.evictLocked()
	}

	c.data[key] = memoryCacheItem{
		data:      append([]byte(nil), value...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryCacheProvider) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.data, key)
	return nil
}

func (c *MemoryCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	return exists && c.now().Before(item.expiresAt), nil
}

func (c *MemoryCacheProvider) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]memoryCacheItem)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCacheProvider) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *MemoryCacheProvider) evictLocked() {
	now := c.now()
	var victim string
	var victimExpiry time.Time
	for key, item := range c.data {
		if !now.Before(item.expiresAt) {
			delete(c.data, key)
			continue
		}
		if victim == "" || item.expiresAt.Before(victimExpiry) {
			victim, victimExpiry = key, item.expiresAt
		}
	}
	if len(c.data) >= c.maxEntries && victim != "" {
		delete(c.data, victim)
	}
}
