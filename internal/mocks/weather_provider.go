package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"weatherbot.app/internal/ports"
)

// WeatherProvider is a mock of ports.WeatherProvider
type WeatherProvider struct {
	mock.Mock
}

// NewWeatherProvider creates a mock that asserts its expectations on cleanup
func NewWeatherProvider(t TestingT) *WeatherProvider {
	m := &WeatherProvider{}
	register(&m.Mock, t)
	return m
}

func (m *WeatherProvider) CurrentByCity(ctx context.Context, city string) (*ports.WeatherData, error) {
	args := m.Called(ctx, city)
	return weatherData(args, 0), args.Error(1)
}

func (m *WeatherProvider) CurrentByCoordinates(ctx context.Context, coords ports.Coordinates) (*ports.WeatherData, error) {
	args := m.Called(ctx, coords)
	return weatherData(args, 0), args.Error(1)
}

func (m *WeatherProvider) Forecast(ctx context.Context, city string, count int) ([]ports.ForecastSample, error) {
	args := m.Called(ctx, city, count)
	var samples []ports.ForecastSample
	if v := args.Get(0); v != nil {
		samples = v.([]ports.ForecastSample)
	}
	return samples, args.Error(1)
}

func (m *WeatherProvider) FindNearby(ctx context.Context, coords ports.Coordinates, count int) ([]string, error) {
	args := m.Called(ctx, coords, count)
	var cities []string
	if v := args.Get(0); v != nil {
		cities = v.([]string)
	}
	return cities, args.Error(1)
}

func (m *WeatherProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

// WeatherCache is a mock of ports.WeatherCache
type WeatherCache struct {
	mock.Mock
}

// NewWeatherCache creates a mock that asserts its expectations on cleanup
func NewWeatherCache(t TestingT) *WeatherCache {
	m := &WeatherCache{}
	register(&m.Mock, t)
	return m
}

func (m *WeatherCache) Get(ctx context.Context, key string) (*ports.WeatherData, error) {
	args := m.Called(ctx, key)
	return weatherData(args, 0), args.Error(1)
}

func (m *WeatherCache) Set(ctx context.Context, key string, weather *ports.WeatherData, ttl time.Duration) error {
	args := m.Called(ctx, key, weather, ttl)
	return args.Error(0)
}

func weatherData(args mock.Arguments, index int) *ports.WeatherData {
	if v := args.Get(index); v != nil {
		return v.(*ports.WeatherData)
	}
	return nil
}
