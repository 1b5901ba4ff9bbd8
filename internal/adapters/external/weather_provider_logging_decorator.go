package external

import (
	"context"
	"time"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// WeatherProviderLoggingDecorator logs every provider request and its outcome
type WeatherProviderLoggingDecorator struct {
	provider ports.WeatherProvider
	logger   ports.Logger
}

func NewWeatherProviderLoggingDecorator(provider ports.WeatherProvider, logger ports.Logger) *WeatherProviderLoggingDecorator {
	return &WeatherProviderLoggingDecorator{
		provider: provider,
		logger:   logger,
	}
}

func (d *WeatherProviderLoggingDecorator) CurrentByCity(ctx context.Context, city string) (*ports.WeatherData, error) {
	done := d.start("current", ports.F("city", city))
	data, err := d.provider.CurrentByCity(ctx, city)
	done(err, weatherFields(data)...)
	return data, err
}

func (d *WeatherProviderLoggingDecorator) CurrentByCoordinates(ctx context.Context, coords ports.Coordinates) (*ports.WeatherData, error) {
	done := d.start("current_by_coordinates",
		ports.F("lat", coords.Latitude),
		ports.F("lon", coords.Longitude))
	data, err := d.provider.CurrentByCoordinates(ctx, coords)
	done(err, weatherFields(data)...)
	return data, err
}

func (d *WeatherProviderLoggingDecorator) Forecast(ctx context.Context, city string, count int) ([]ports.ForecastSample, error) {
	done := d.start("forecast", ports.F("city", city), ports.F("count", count))
	samples, err := d.provider.Forecast(ctx, city, count)
	done(err, ports.F("samples", len(samples)))
	return samples, err
}

func (d *WeatherProviderLoggingDecorator) FindNearby(ctx context.Context, coords ports.Coordinates, count int) ([]string, error) {
	done := d.start("find_nearby",
		ports.F("lat", coords.Latitude),
		ports.F("lon", coords.Longitude),
		ports.F("count", count))
	names, err := d.provider.FindNearby(ctx, coords, count)
	done(err, ports.F("cities", names))
	return names, err
}

// Name returns the wrapped provider's name so metrics stay keyed by provider
func (d *WeatherProviderLoggingDecorator) Name() string {
	return d.provider.Name()
}

// start logs the request and returns a func that logs its outcome
func (d *WeatherProviderLoggingDecorator) start(operation string, fields ...ports.Field) func(err error, result ...ports.Field) {
	base := with([]ports.Field{
		ports.F("provider", d.provider.Name()),
		ports.F("operation", operation),
	}, fields...)

	d.logger.Info("Weather API request started", with(base, ports.F("event", "request"))...)
	startTime := time.Now()

	return func(err error, result ...ports.Field) {
		outcome := with(base, ports.F("duration_ms", time.Since(startTime).Milliseconds()))
		switch {
		case err == nil:
			d.logger.Info("Weather API request completed",
				with(outcome, append([]ports.Field{ports.F("event", "response")}, result...)...)...)
		case errors.IsNotFoundError(err):
			d.logger.Info("Weather API location not found", with(outcome, ports.F("event", "not_found"))...)
		default:
			d.logger.Error("Weather API request failed",
				with(outcome, ports.F("event", "error"), ports.F("error", err.Error()))...)
		}
	}
}

// with returns a new slice so callers never share a backing array
func with(fields []ports.Field, more ...ports.Field) []ports.Field {
	out := make([]ports.Field, 0, len(fields)+len(more))
	return append(append(out, fields...), more...)
}

func weatherFields(data *ports.WeatherData) []ports.Field {
	if data == nil {
		return nil
	}
	return []ports.Field{
		ports.F("resolved_city", data.City),
		ports.F("temperature", data.Temperature),
		ports.F("description", data.Description),
	}
}
