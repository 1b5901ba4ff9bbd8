package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

type UseCase struct {
	provider     ports.WeatherProvider
	providerName string
	cache        ports.WeatherCache
	config       ports.ConfigProvider
	logger       ports.Logger
	metrics      ports.MetricsCollector
	now          func() time.Time
}

type UseCaseDependencies struct {
	Provider ports.WeatherProvider
	Cache    ports.WeatherCache
	Config   ports.ConfigProvider
	Logger   ports.Logger
	Metrics  ports.MetricsCollector
	// Now defaults to time.Now
	Now func() time.Time
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Provider == nil {
		return nil, errors.NewValidationError("weather provider is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("cache is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &UseCase{
		provider:     deps.Provider,
		providerName: deps.Provider.Name(),
		cache:        deps.Cache,
		config:       deps.Config,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		now:          now,
	}, nil
}

// Current returns the current weather for a city name
func (uc *UseCase) Current(ctx context.Context, city string) (*Weather, error) {
	request := WeatherRequest{City: city}
	if err := request.IsValid(); err != nil {
		return nil, errors.NewValidationError("invalid weather request: " + err.Error())
	}

	request.NormalizeCity()
	uc.logger.Debug("Getting weather for city", ports.F("city", request.City))

	weather, err := uc.getWeatherWithCache(ctx, request)
	if err != nil {
		uc.logFailure("Failed to get weather", err, ports.F("city", request.City))
		return nil, fmt.Errorf("get weather for city %s: %w", request.City, err)
	}

	uc.logger.Debug("Weather retrieved successfully",
		ports.F("city", weather.City),
		ports.F("temperature", weather.Temperature))
	return weather, nil
}

// CurrentByLocation resolves the nearest city of coords and returns its current weather
func (uc *UseCase) CurrentByLocation(ctx context.Context, coords ports.Coordinates) (*Weather, error) {
	if err := validateCoordinates(coords); err != nil {
		return nil, err
	}

	callCtx, cancel := uc.withTimeout(ctx)
	defer cancel()

	data, err := uc.provider.CurrentByCoordinates(callCtx, coords)
	uc.recordCall(ctx, err)
	if err != nil {
		err = classify(err, "weather provider failed to resolve location")
		uc.logFailure("Failed to get weather by location", err,
			ports.F("lat", coords.Latitude), ports.F("lon", coords.Longitude))
		return nil, err
	}

	weather := fromPortsWeather(data)
	if err := weather.IsValid(); err != nil {
		return nil, errors.NewExternalAPIError("invalid weather data from provider: "+err.Error(), nil)
	}
	return weather, nil
}

// TomorrowForecast aggregates the provider samples that fall on the next UTC day
func (uc *UseCase) TomorrowForecast(ctx context.Context, city string) (*Forecast, error) {
	request := WeatherRequest{City: city}
	if err := request.IsValid(); err != nil {
		return nil, errors.NewValidationError("invalid forecast request: " + err.Error())
	}
	request.NormalizeCity()

	callCtx, cancel := uc.withTimeout(ctx)
	defer cancel()

	count := uc.config.GetWeatherConfig().ForecastSamples
	samples, err := uc.provider.Forecast(callCtx, request.City, count)
	uc.recordCall(ctx, err)
	if err != nil {
		err = classify(err, "weather provider failed to return forecast")
		uc.logFailure("Failed to get forecast", err, ports.F("city", request.City))
		return nil, fmt.Errorf("get forecast for city %s: %w", request.City, err)
	}

	day := TomorrowUTC(uc.now())
	forecast, ok := Aggregate(request.City, day, fromPortsSamples(samples))
	if !ok {
		uc.logger.Info("No forecast samples for tomorrow",
			ports.F("city", request.City),
			ports.F("date", day.Format(time.DateOnly)),
			ports.F("samples", len(samples)))
		return nil, errors.NewNotFoundError("no forecast samples for " + request.City + " tomorrow")
	}

	return forecast, nil
}

// NearbyCities returns up to NearbyShown distinct city names around coords
func (uc *UseCase) NearbyCities(ctx context.Context, coords ports.Coordinates) ([]string, error) {
	if err := validateCoordinates(coords); err != nil {
		return nil, err
	}

	cfg := uc.config.GetWeatherConfig()

	callCtx, cancel := uc.withTimeout(ctx)
	defer cancel()

	names, err := uc.provider.FindNearby(callCtx, coords, cfg.NearbyCount)
	uc.recordCall(ctx, err)
	if err != nil {
		err = classify(err, "weather provider failed to find nearby cities")
		uc.logFailure("Failed to find nearby cities", err,
			ports.F("lat", coords.Latitude), ports.F("lon", coords.Longitude))
		return nil, err
	}

	cities := make([]string, 0, cfg.NearbyShown)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cities = append(cities, name)
		if len(cities) == cfg.NearbyShown {
			break
		}
	}

	return cities, nil
}

func (uc *UseCase) getWeatherWithCache(ctx context.Context, request WeatherRequest) (*Weather, error) {
	cfg := uc.config.GetWeatherConfig()
	if !cfg.EnableCache {
		return uc.getWeatherFromProvider(ctx, request.City)
	}

	cacheKey := request.CacheKey()
	cachedWeather, err := uc.cache.Get(ctx, cacheKey)
	if err == nil && cachedWeather != nil {
		uc.metrics.RecordCacheHit(ctx)
		uc.logger.Debug("Weather found in cache", ports.F("city", request.City))
		return fromPortsWeather(cachedWeather), nil
	}
	uc.metrics.RecordCacheMiss(ctx)

	weather, err := uc.getWeatherFromProvider(ctx, request.City)
	if err != nil {
		return nil, err
	}

	if cacheErr := uc.cache.Set(ctx, cacheKey, toPortsWeather(weather), cfg.CacheTTL); cacheErr != nil {
		uc.logger.Warn("Failed to cache weather data",
			ports.F("city", request.City),
			ports.F("error", cacheErr))
	}

	return weather, nil
}

func (uc *UseCase) getWeatherFromProvider(ctx context.Context, city string) (*Weather, error) {
	callCtx, cancel := uc.withTimeout(ctx)
	defer cancel()

	providerWeather, err := uc.provider.CurrentByCity(callCtx, city)
	uc.recordCall(ctx, err)
	if err != nil {
		return nil, classify(err, "weather provider failed")
	}

	domainWeather := fromPortsWeather(providerWeather)
	if err := domainWeather.IsValid(); err != nil {
		return nil, errors.NewExternalAPIError("invalid weather data from provider: "+err.Error(), nil)
	}

	return domainWeather, nil
}

func (uc *UseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := uc.config.GetWeatherConfig().RequestTimeout
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// recordCall counts a provider round trip; a rejected city is still a successful call
func (uc *UseCase) recordCall(ctx context.Context, err error) {
	uc.metrics.RecordWeatherAPICall(ctx, uc.providerName, err == nil || errors.IsNotFoundError(err))
}

func (uc *UseCase) logFailure(msg string, err error, fields ...ports.Field) {
	fields = append(fields, ports.F("error", err))
	if errors.IsNotFoundError(err) {
		uc.logger.Info(msg, fields...)
		return
	}
	uc.logger.Error(msg, fields...)
}

// classify keeps NotFound and ExternalAPI errors and turns anything else into a transient failure
func classify(err error, msg string) error {
	if errors.IsNotFoundError(err) || errors.IsExternalAPIError(err) {
		return err
	}
	return errors.NewExternalAPIError(msg, err)
}

func validateCoordinates(coords ports.Coordinates) error {
	if coords.Latitude < -90 || coords.Latitude > 90 {
		return errors.NewValidationError("latitude must be between -90 and 90")
	}
	if coords.Longitude < -180 || coords.Longitude > 180 {
		return errors.NewValidationError("longitude must be between -180 and 180")
	}
	return nil
}

func toPortsWeather(weather *Weather) *ports.WeatherData {
	return &ports.WeatherData{
		City:        weather.City,
		Condition:   weather.Condition,
		Description: weather.Description,
		Icon:        weather.Icon,
		Temperature: weather.Temperature,
		Timestamp:   weather.Timestamp,
	}
}

func fromPortsWeather(data *ports.WeatherData) *Weather {
	if data == nil {
		return &Weather{}
	}
	return &Weather{
		City:        data.City,
		Condition:   data.Condition,
		Description: data.Description,
		Icon:        data.Icon,
		Temperature: data.Temperature,
		Timestamp:   data.Timestamp,
	}
}

func fromPortsSamples(samples []ports.ForecastSample) []Sample {
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		out = append(out, Sample{
			Time:        s.Time,
			Temperature: s.Temperature,
			Condition:   s.Condition,
			Description: s.Description,
			Icon:        s.Icon,
		})
	}
	return out
}
