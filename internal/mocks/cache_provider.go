package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// CacheProvider is a mock of ports.CacheProvider
type CacheProvider struct {
	mock.Mock
}

// NewCacheProvider creates a mock that asserts its expectations on cleanup
func NewCacheProvider(t TestingT) *CacheProvider {
	m := &CacheProvider{}
	register(&m.Mock, t)
	return m
}

func (m *CacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Error(1)
}

func (m *CacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *CacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *CacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *CacheProvider) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
