package external

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

var _ ports.WeatherProvider = (*WeatherProviderLoggingDecorator)(nil)

func TestWeatherProviderLoggingDecorator_Success(t *testing.T) {
	provider := mocks.NewWeatherProvider(t)
	logger := mocks.NewLogger()
	decorator := NewWeatherProviderLoggingDecorator(provider, logger)

	provider.On("Name").Return("openweathermap")
	provider.On("CurrentByCity", mock.Anything, "London").
		Return(&ports.WeatherData{City: "London", Temperature: 22, Description: "clear sky"}, nil)

	result, err := decorator.CurrentByCity(context.Background(), "London")

	require.NoError(t, err)
	assert.Equal(t, "London", result.City)

	entries := logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Weather API request started", entries[0].Message)
	assert.Equal(t, "request", entries[0].Fields["event"])
	assert.Equal(t, "current", entries[0].Fields["operation"])
	assert.Equal(t, "Weather API request completed", entries[1].Message)
	assert.Equal(t, "response", entries[1].Fields["event"])
	assert.Equal(t, 22.0, entries[1].Fields["temperature"])
	assert.Contains(t, entries[1].Fields, "duration_ms")
	assert.Equal(t, "openweathermap", decorator.Name())
}

func TestWeatherProviderLoggingDecorator_NotFoundIsInfo(t *testing.T) {
	provider := mocks.NewWeatherProvider(t)
	logger := mocks.NewLogger()
	decorator := NewWeatherProviderLoggingDecorator(provider, logger)

	provider.On("Name").Return("openweathermap")
	provider.On("Forecast", mock.Anything, "Nowhere", 8).Return(nil, errors.NewNotFoundError("city not found"))

	_, err := decorator.Forecast(context.Background(), "Nowhere", 8)

	assert.True(t, errors.IsNotFoundError(err))
	assert.True(t, logger.Has("info", "Weather API location not found"))
	assert.False(t, logger.Has("error", "Weather API request failed"))
}

func TestWeatherProviderLoggingDecorator_FailureIsError(t *testing.T) {
	provider := mocks.NewWeatherProvider(t)
	logger := mocks.NewLogger()
	decorator := NewWeatherProviderLoggingDecorator(provider, logger)
	coords := ports.Coordinates{Latitude: 51.5, Longitude: -0.12}

	provider.On("Name").Return("openweathermap")
	provider.On("FindNearby", mock.Anything, coords, 5).Return(nil, errors.NewExternalAPIError("status 502", nil))
	provider.On("CurrentByCoordinates", mock.Anything, coords).Return(&ports.WeatherData{City: "London"}, nil)

	_, err := decorator.FindNearby(context.Background(), coords, 5)
	assert.True(t, errors.IsExternalAPIError(err))
	assert.True(t, logger.Has("error", "Weather API request failed"))

	data, err := decorator.CurrentByCoordinates(context.Background(), coords)
	require.NoError(t, err)
	assert.Equal(t, "London", data.City)
}
