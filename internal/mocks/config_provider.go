package mocks

import "weatherbot.app/internal/ports"

// ConfigProvider is a static ports.ConfigProvider for tests
type ConfigProvider struct {
	Weather   ports.WeatherConfig
	Server    ports.ServerConfig
	Database  ports.DatabaseConfig
	Cache     ports.CacheConfig
	Scheduler ports.SchedulerConfig
	Bot       ports.BotConfig
}

func (c *ConfigProvider) GetWeatherConfig() ports.WeatherConfig     { return c.Weather }
func (c *ConfigProvider) GetServerConfig() ports.ServerConfig       { return c.Server }
func (c *ConfigProvider) GetDatabaseConfig() ports.DatabaseConfig   { return c.Database }
func (c *ConfigProvider) GetCacheConfig() ports.CacheConfig         { return c.Cache }
func (c *ConfigProvider) GetSchedulerConfig() ports.SchedulerConfig { return c.Scheduler }
func (c *ConfigProvider) GetBotConfig() ports.BotConfig             { return c.Bot }
