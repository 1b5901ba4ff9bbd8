package infrastructure

import (
	"context"

	"weatherbot.app/internal/ports"
)

// SystemHealthChecker aggregates all health checks
type SystemHealthChecker struct {
	databaseChecker ports.HealthChecker
	cacheChecker    ports.HealthChecker
	weatherChecker  ports.HealthChecker
	configProvider  ports.ConfigProvider
}

// SystemHealthCheckerConfig holds the checkers; nil checkers are skipped
type SystemHealthCheckerConfig struct {
	DatabaseChecker ports.HealthChecker
	CacheChecker    ports.HealthChecker
	WeatherChecker  ports.HealthChecker
	ConfigProvider  ports.ConfigProvider
}

func NewSystemHealthChecker(config SystemHealthCheckerConfig) *SystemHealthChecker {
	return &SystemHealthChecker{
		databaseChecker: config.DatabaseChecker,
		cacheChecker:    config.CacheChecker,
		weatherChecker:  config.WeatherChecker,
		configProvider:  config.ConfigProvider,
	}
}

func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	results := make(map[string]ports.HealthStatus)

	if s.databaseChecker != nil {
		results["database"] = s.databaseChecker.Check(ctx)
	}
	if s.cacheChecker != nil {
		results["cache"] = s.cacheChecker.Check(ctx)
	}
	if s.weatherChecker != nil {
		results["weather_provider"] = s.weatherChecker.Check(ctx)
	}

	if s.configProvider != nil {
		scheduler := s.configProvider.GetSchedulerConfig()
		bot := s.configProvider.GetBotConfig()
		results["config"] = ports.HealthStatus{
			Component: "config",
			Status:    StatusHealthy,
			Details: map[string]interface{}{
				"notification_interval": scheduler.Interval.String(),
				"default_locale":        bot.DefaultLocale,
				"popular_cities":        len(bot.PopularCities),
			},
		}
	}

	return results
}

// OverallStatus folds component statuses: any unhealthy component makes the
// system unhealthy, otherwise any degraded one makes it degraded
func OverallStatus(results map[string]ports.HealthStatus) string {
	overall := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}
