package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"weatherbot.app/pkg/errors"
)

const (
	maxRedisDB          = 15
	maxCacheTTLMinutes  = 1440
	maxPortNumber       = 65535
	maxForecastSamples  = 40
	maxNearbyCandidates = 50
)

// Config represents the application configuration structure
type Config struct {
	Telegram  TelegramConfig  `split_words:"true"`
	Weather   WeatherConfig   `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Scheduler SchedulerConfig `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Server    ServerConfig    `split_words:"true"`
	Bot       BotConfig       `split_words:"true"`
	LogLevel  string          `envconfig:"LOG_LEVEL" default:"info"`
}

type TelegramConfig struct {
	BotToken    string        `envconfig:"BOT_TOKEN"`
	AdminID     int64         `envconfig:"ADMIN_ID"`
	PollTimeout time.Duration `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30s"`
	QueueSize   int           `envconfig:"TELEGRAM_QUEUE_SIZE" default:"64"`
}

type WeatherConfig struct {
	APIKey          string        `envconfig:"WEATHER_API"`
	BaseURL         string        `envconfig:"WEATHER_API_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	IconURLTemplate string        `envconfig:"WEATHER_ICON_URL" default:"https://openweathermap.org/img/wn/%s@4x.png"`
	RequestTimeout  time.Duration `envconfig:"WEATHER_REQUEST_TIMEOUT" default:"10s"`
	ForecastSamples int           `envconfig:"WEATHER_FORECAST_SAMPLES" default:"8"`
	NearbyCount     int           `envconfig:"WEATHER_NEARBY_COUNT" default:"5"`
	NearbyShown     int           `envconfig:"WEATHER_NEARBY_SHOWN" default:"3"`
	EnableCache     bool          `envconfig:"WEATHER_ENABLE_CACHE" default:"true"`
	CacheTTLMinutes int           `envconfig:"WEATHER_CACHE_TTL_MINUTES" default:"10"`
	EnableLogging   bool          `envconfig:"WEATHER_ENABLE_LOGGING" default:"false"`
	LogFilePath     string        `envconfig:"WEATHER_LOG_FILE_PATH" default:"logs/weather_provider.log"`
}

type DatabaseConfig struct {
	URL             string        `envconfig:"DATABASE_URL"`
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD" default:"postgres"`
	Name            string        `envconfig:"DB_NAME" default:"weatherbot"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
}

// GetDSN returns DATABASE_URL when set, otherwise a key/value DSN built from the parts
func (c DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type SchedulerConfig struct {
	Interval                 time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"24h"`
	InitialDelay             time.Duration `envconfig:"SCHEDULER_INITIAL_DELAY" default:"1m"`
	SubscriberTimeout        time.Duration `envconfig:"SCHEDULER_SUBSCRIBER_TIMEOUT" default:"15s"`
	ListSubscriptionsTimeout time.Duration `envconfig:"SCHEDULER_LIST_TIMEOUT" default:"30s"`
}

// CacheType represents the type of cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeMemory || c == CacheTypeRedis
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch s {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type  CacheType   `envconfig:"CACHE_TYPE" default:"memory"`
	Redis RedisConfig `split_words:"true"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

type BotConfig struct {
	PopularCities    []string `envconfig:"POPULAR_CITIES" default:"Tashkent,Moscow,New York,London,Tokyo,Berlin,Paris,Dubai"`
	DefaultLocale    string   `envconfig:"DEFAULT_LOCALE" default:"en"`
	LocaleBundlePath string   `envconfig:"LOCALE_BUNDLE_PATH"`
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Telegram.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Bot.Validate(); err != nil {
		return err
	}
	return nil
}

func (t *TelegramConfig) Validate() error {
	if strings.TrimSpace(t.BotToken) == "" {
		return errors.NewConfigurationError("BOT_TOKEN cannot be empty", nil)
	}
	if t.AdminID < 0 {
		return errors.NewConfigurationError("ADMIN_ID cannot be negative", nil)
	}
	if t.PollTimeout < time.Second {
		return errors.NewConfigurationError("TELEGRAM_POLL_TIMEOUT must be at least 1s", nil)
	}
	if t.QueueSize < 1 {
		return errors.NewConfigurationError("TELEGRAM_QUEUE_SIZE must be at least 1", nil)
	}
	return nil
}

func (w *WeatherConfig) Validate() error {
	if strings.TrimSpace(w.APIKey) == "" {
		return errors.NewConfigurationError("WEATHER_API cannot be empty", nil)
	}
	if !strings.HasPrefix(w.BaseURL, "http://") && !strings.HasPrefix(w.BaseURL, "https://") {
		return errors.NewConfigurationError("WEATHER_API_BASE_URL must start with http:// or https://", nil)
	}
	if !strings.Contains(w.IconURLTemplate, "%s") {
		return errors.NewConfigurationError("WEATHER_ICON_URL must contain a %s placeholder for the icon code", nil)
	}
	if w.RequestTimeout <= 0 {
		return errors.NewConfigurationError("WEATHER_REQUEST_TIMEOUT must be positive", nil)
	}
	if w.ForecastSamples < 1 || w.ForecastSamples > maxForecastSamples {
		return errors.NewConfigurationError("WEATHER_FORECAST_SAMPLES must be between 1 and 40", nil)
	}
	if w.NearbyCount < 1 || w.NearbyCount > maxNearbyCandidates {
		return errors.NewConfigurationError("WEATHER_NEARBY_COUNT must be between 1 and 50", nil)
	}
	if w.NearbyShown < 1 || w.NearbyShown > w.NearbyCount {
		return errors.NewConfigurationError("WEATHER_NEARBY_SHOWN must be between 1 and WEATHER_NEARBY_COUNT", nil)
	}
	if w.CacheTTLMinutes < 1 || w.CacheTTLMinutes > maxCacheTTLMinutes {
		return errors.NewConfigurationError("WEATHER_CACHE_TTL_MINUTES must be between 1 and 1440 minutes", nil)
	}
	if w.EnableLogging && w.LogFilePath == "" {
		return errors.NewConfigurationError("WEATHER_LOG_FILE_PATH cannot be empty when logging is enabled", nil)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.MaxOpenConns < 1 {
		return errors.NewConfigurationError("DB_MAX_OPEN_CONNS must be at least 1", nil)
	}
	if d.MaxIdleConns < 0 || d.MaxIdleConns > d.MaxOpenConns {
		return errors.NewConfigurationError("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS", nil)
	}
	if d.URL != "" {
		return nil
	}
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (s *SchedulerConfig) Validate() error {
	if s.Interval < time.Minute {
		return errors.NewConfigurationError("SCHEDULER_INTERVAL must be at least 1 minute", nil)
	}
	if s.InitialDelay < 0 {
		return errors.NewConfigurationError("SCHEDULER_INITIAL_DELAY cannot be negative", nil)
	}
	if s.SubscriberTimeout <= 0 {
		return errors.NewConfigurationError("SCHEDULER_SUBSCRIBER_TIMEOUT must be positive", nil)
	}
	if s.ListSubscriptionsTimeout <= 0 {
		return errors.NewConfigurationError("SCHEDULER_LIST_TIMEOUT must be positive", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis", nil)
	}

	if c.Type == CacheTypeRedis {
		return c.Redis.Validate()
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

func (b *BotConfig) Validate() error {
	if len(b.PopularCities) == 0 {
		return errors.NewConfigurationError("POPULAR_CITIES must list at least one city", nil)
	}
	for _, city := range b.PopularCities {
		if strings.TrimSpace(city) == "" {
			return errors.NewConfigurationError("POPULAR_CITIES cannot contain empty names", nil)
		}
	}
	if strings.TrimSpace(b.DefaultLocale) == "" {
		return errors.NewConfigurationError("DEFAULT_LOCALE cannot be empty", nil)
	}
	return nil
}
