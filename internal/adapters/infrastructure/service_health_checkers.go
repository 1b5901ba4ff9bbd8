package infrastructure

import (
	"context"

	"weatherbot.app/internal/ports"
)

// Pinger is implemented by cache backends with a remote connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheHealthChecker reports cache hit statistics and, for remote backends,
// connectivity
type CacheHealthChecker struct {
	backend string
	cache   ports.CacheMetrics
}

func NewCacheHealthChecker(backend string, cache ports.CacheMetrics) *CacheHealthChecker {
	return &CacheHealthChecker{backend: backend, cache: cache}
}

func (c *CacheHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "cache",
		Status:    StatusHealthy,
		Details: map[string]interface{}{
			"backend": c.backend,
		},
	}

	if c.cache == nil {
		status.Details["enabled"] = false
		return status
	}

	stats := c.cache.GetStats()
	status.Details["hits"] = stats.Hits
	status.Details["misses"] = stats.Misses
	status.Details["hit_ratio"] = stats.HitRatio

	if pinger, ok := c.cache.(Pinger); ok {
		ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			// lookups fall through to the provider, so the bot keeps working
			status.Status = StatusDegraded
			status.Error = err.Error()
		}
	}
	return status
}

// CircuitReporter is a weather provider that exposes its circuit breaker state
type CircuitReporter interface {
	Name() string
	CircuitState() string
}

// WeatherProviderHealthChecker reports the provider's circuit breaker state.
// It never calls the provider, so checks do not spend API quota.
type WeatherProviderHealthChecker struct {
	provider CircuitReporter
}

func NewWeatherProviderHealthChecker(provider CircuitReporter) *WeatherProviderHealthChecker {
	return &WeatherProviderHealthChecker{provider: provider}
}

func (w *WeatherProviderHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "weather_provider",
		Details:   make(map[string]interface{}),
	}

	if w.provider == nil {
		status.Status = StatusUnhealthy
		status.Error = "weather provider is not available"
		return status
	}

	state := w.provider.CircuitState()
	status.Details["provider"] = w.provider.Name()
	status.Details["circuit"] = state

	switch state {
	case "closed":
		status.Status = StatusHealthy
	case "open":
		status.Status = StatusDegraded
		status.Error = "circuit breaker is open"
	default:
		status.Status = StatusDegraded
	}
	return status
}
