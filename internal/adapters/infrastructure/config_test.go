package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
)

var _ ports.ConfigProvider = (*ConfigProviderAdapter)(nil)

func TestConfigProviderAdapter(t *testing.T) {
	cfg := &config.Config{
		Telegram: config.TelegramConfig{AdminID: 1000},
		Weather: config.WeatherConfig{
			EnableCache:     true,
			CacheTTLMinutes: 15,
			RequestTimeout:  10 * time.Second,
			ForecastSamples: 8,
			NearbyCount:     5,
			NearbyShown:     3,
			IconURLTemplate: "https://openweathermap.org/img/wn/%s@4x.png",
		},
		Database: config.DatabaseConfig{URL: "postgres://bot@db/weather", MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour},
		Scheduler: config.SchedulerConfig{
			Interval:                 24 * time.Hour,
			InitialDelay:             time.Minute,
			SubscriberTimeout:        15 * time.Second,
			ListSubscriptionsTimeout: 30 * time.Second,
		},
		Cache: config.CacheConfig{
			Type:  config.CacheTypeRedis,
			Redis: config.RedisConfig{Addr: "redis:6379", DB: 2, DialTimeout: 5, ReadTimeout: 3, WriteTimeout: 3},
		},
		Server: config.ServerConfig{Port: 9090},
		Bot:    config.BotConfig{PopularCities: []string{" London ", "", "Paris"}, DefaultLocale: "en"},
	}
	adapter := NewConfigProviderAdapter(cfg)

	weather := adapter.GetWeatherConfig()
	assert.Equal(t, 15*time.Minute, weather.CacheTTL)
	assert.Equal(t, 8, weather.ForecastSamples)
	assert.Equal(t, 3, weather.NearbyShown)

	assert.Equal(t, "postgres://bot@db/weather", adapter.GetDatabaseConfig().DSN)
	assert.Equal(t, time.Hour, adapter.GetDatabaseConfig().ConnMaxLifetime)

	cache := adapter.GetCacheConfig()
	assert.Equal(t, "redis", cache.Type)
	assert.Equal(t, "redis:6379", cache.Redis.Addr)
	assert.Equal(t, 2, cache.Redis.DB)

	assert.Equal(t, time.Minute, adapter.GetSchedulerConfig().InitialDelay)
	assert.Equal(t, 9090, adapter.GetServerConfig().Port)

	bot := adapter.GetBotConfig()
	assert.Equal(t, int64(1000), bot.AdminID)
	assert.Equal(t, []string{"London", "Paris"}, bot.PopularCities)
	assert.Equal(t, "en", bot.DefaultLocale)
}
