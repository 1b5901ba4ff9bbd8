package infrastructure

import (
	"strings"
	"time"

	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
)

// ConfigProviderAdapter implements the ConfigProvider port
type ConfigProviderAdapter struct {
	config *config.Config
}

func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		config: cfg,
	}
}

func (c *ConfigProviderAdapter) GetWeatherConfig() ports.WeatherConfig {
	w := c.config.Weather
	return ports.WeatherConfig{
		EnableCache:     w.EnableCache,
		CacheTTL:        time.Duration(w.CacheTTLMinutes) * time.Minute,
		RequestTimeout:  w.RequestTimeout,
		ForecastSamples: w.ForecastSamples,
		NearbyCount:     w.NearbyCount,
		NearbyShown:     w.NearbyShown,
		IconURLTemplate: w.IconURLTemplate,
	}
}

func (c *ConfigProviderAdapter) GetServerConfig() ports.ServerConfig {
	return ports.ServerConfig{
		Port: c.config.Server.Port,
	}
}

func (c *ConfigProviderAdapter) GetDatabaseConfig() ports.DatabaseConfig {
	d := c.config.Database
	return ports.DatabaseConfig{
		DSN:             d.GetDSN(),
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	r := c.config.Cache.Redis
	return ports.CacheConfig{
		Type: c.config.Cache.Type.String(),
		Redis: ports.RedisConfig{
			Addr:         r.Addr,
			Password:     r.Password,
			DB:           r.DB,
			DialTimeout:  r.DialTimeout,
			ReadTimeout:  r.ReadTimeout,
			WriteTimeout: r.WriteTimeout,
		},
	}
}

func (c *ConfigProviderAdapter) GetSchedulerConfig() ports.SchedulerConfig {
	s := c.config.Scheduler
	return ports.SchedulerConfig{
		Interval:                 s.Interval,
		InitialDelay:             s.InitialDelay,
		SubscriberTimeout:        s.SubscriberTimeout,
		ListSubscriptionsTimeout: s.ListSubscriptionsTimeout,
	}
}

func (c *ConfigProviderAdapter) GetBotConfig() ports.BotConfig {
	cities := make([]string, 0, len(c.config.Bot.PopularCities))
	for _, city := range c.config.Bot.PopularCities {
		if city = strings.TrimSpace(city); city != "" {
			cities = append(cities, city)
		}
	}

	return ports.BotConfig{
		AdminID:       c.config.Telegram.AdminID,
		PopularCities: cities,
		DefaultLocale: c.config.Bot.DefaultLocale,
	}
}
