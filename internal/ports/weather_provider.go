package ports

import (
	"context"
	"time"
)

// Coordinates is a WGS84 point as delivered by a location message
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// WeatherData represents one point-in-time reading for a resolved city
type WeatherData struct {
	City        string
	Condition   string
	Description string
	Icon        string
	Temperature float64
	Timestamp   time.Time
}

// ForecastSample is a single forecast slot returned by the provider
type ForecastSample struct {
	Time        time.Time
	Temperature float64
	Condition   string
	Description string
	Icon        string
}

// WeatherProvider defines the contract for weather data providers.
// Implementations return a NotFound error when the provider rejects the
// location and an ExternalAPI error for transport or parse failures.
type WeatherProvider interface {
	CurrentByCity(ctx context.Context, city string) (*WeatherData, error)
	CurrentByCoordinates(ctx context.Context, coords Coordinates) (*WeatherData, error)
	Forecast(ctx context.Context, city string, count int) ([]ForecastSample, error)
	FindNearby(ctx context.Context, coords Coordinates, count int) ([]string, error)
	Name() string
}

// WeatherCache defines the contract for caching weather data
type WeatherCache interface {
	Get(ctx context.Context, key string) (*WeatherData, error)
	Set(ctx context.Context, key string, weather *WeatherData, ttl time.Duration) error
}
