package external

import (
	"context"
	"encoding/json"
	"time"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// cachedWeather is the stored form of a snapshot
type cachedWeather struct {
	City        string    `json:"city"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Temperature float64   `json:"temp"`
	Timestamp   time.Time `json:"ts"`
}

// WeatherCacheAdapter bridges generic CacheProvider to weather-specific WeatherCache
type WeatherCacheAdapter struct {
	cacheProvider ports.CacheProvider
	logger        ports.Logger
}

func NewWeatherCacheAdapter(cacheProvider ports.CacheProvider, logger ports.Logger) *WeatherCacheAdapter {
	return &WeatherCacheAdapter{
		cacheProvider: cacheProvider,
		logger:        logger,
	}
}

// Get returns a cached snapshot. An undecodable entry is dropped and reported as a miss.
func (w *WeatherCacheAdapter) Get(ctx context.Context, key string) (*ports.WeatherData, error) {
	data, err := w.cacheProvider.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var cached cachedWeather
	if err := json.Unmarshal(data, &cached); err != nil || cached.City == "" {
		w.logger.Warn("Dropping corrupt weather cache entry", ports.F("key", key))
		if delErr := w.cacheProvider.Delete(ctx, key); delErr != nil {
			w.logger.Warn("Failed to delete corrupt cache entry",
				ports.F("key", key),
				ports.F("error", delErr))
		}
		return nil, errors.NewNotFoundError("cache miss")
	}

	return &ports.WeatherData{
		City:        cached.City,
		Condition:   cached.Condition,
		Description: cached.Description,
		Icon:        cached.Icon,
		Temperature: cached.Temperature,
		Timestamp:   cached.Timestamp,
	}, nil
}

func (w *WeatherCacheAdapter) Set(ctx context.Context, key string, weather *ports.WeatherData, ttl time.Duration) error {
	if weather == nil {
		return errors.NewValidationError("weather data cannot be nil")
	}

	data, err := json.Marshal(cachedWeather{
		City:        weather.City,
		Condition:   weather.Condition,
		Description: weather.Description,
		Icon:        weather.Icon,
		Temperature: weather.Temperature,
		Timestamp:   weather.Timestamp,
	})
	if err != nil {
		return errors.NewExternalAPIError("failed to serialize weather data", err)
	}

	return w.cacheProvider.Set(ctx, key, data, ttl)
}
