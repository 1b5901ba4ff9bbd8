package ports

import (
	"context"
	"time"
)

// WeatherConfig represents weather service configuration
type WeatherConfig struct {
	EnableCache     bool
	CacheTTL        time.Duration
	RequestTimeout  time.Duration
	ForecastSamples int
	NearbyCount     int
	NearbyShown     int
	IconURLTemplate string
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Type  string
	Redis RedisConfig
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// SchedulerConfig represents scheduler configuration
type SchedulerConfig struct {
	Interval                 time.Duration
	InitialDelay             time.Duration
	SubscriberTimeout        time.Duration
	ListSubscriptionsTimeout time.Duration
}

// BotConfig represents chat front-end configuration
type BotConfig struct {
	AdminID       int64
	PopularCities []string
	DefaultLocale string
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetWeatherConfig() WeatherConfig
	GetServerConfig() ServerConfig
	GetDatabaseConfig() DatabaseConfig
	GetCacheConfig() CacheConfig
	GetSchedulerConfig() SchedulerConfig
	GetBotConfig() BotConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// MetricsCollector defines the contract for metrics collection
type MetricsCollector interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordWeatherAPICall(ctx context.Context, provider string, success bool)
	RecordEvent(ctx context.Context, kind string)
	RecordNotification(ctx context.Context, outcome string)
	ObserveTick(ctx context.Context, duration time.Duration)
}
