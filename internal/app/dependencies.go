package app

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"
	"weatherbot.app/internal/adapters/database"
	"weatherbot.app/internal/adapters/external"
	"weatherbot.app/internal/adapters/infrastructure"
	"weatherbot.app/internal/adapters/telegram"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
)

// EventSource delivers inbound chat events to a handler until ctx ends
type EventSource interface {
	Run(ctx context.Context, handler telegram.EventHandler)
}

// Runtime is everything the application drives: the ports plus the pieces
// that are not ports (event source, ops endpoints, resources to release)
type Runtime struct {
	Ports          *ports.ApplicationPorts
	Events         EventSource
	Health         ports.SystemHealthChecker
	MetricsHandler http.Handler
	Closers        []func() error
}

// DependencyContainer builds the production adapters from configuration
type DependencyContainer struct {
	config *config.Config
	logger ports.Logger

	db         *gorm.DB
	cache      external.StatsCacheProvider
	provider   *external.OpenWeatherMapProviderAdapter
	fileLogger *infrastructure.FileLoggerAdapter
	bot        *telegram.Adapter
	metrics    *infrastructure.PrometheusMetricsCollector
	runtime    *Runtime
}

func NewDependencyContainer(ctx context.Context, cfg *config.Config, logger ports.Logger) (*DependencyContainer, error) {
	container := &DependencyContainer{
		config: cfg,
		logger: logger,
	}

	steps := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"database", container.initializeDatabase},
		{"cache", container.initializeCache},
		{"weather provider", container.initializeWeatherProvider},
		{"telegram", container.initializeTelegram},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			_ = container.Cleanup()
			return nil, fmt.Errorf("initialize %s: %w", step.name, err)
		}
	}

	container.assemble()
	return container, nil
}

func (c *DependencyContainer) initializeDatabase(ctx context.Context) error {
	c.logger.Info("Initializing database connection")

	configProvider := infrastructure.NewConfigProviderAdapter(c.config)
	db, err := database.Open(configProvider.GetDatabaseConfig())
	if err != nil {
		return err
	}

	c.db = db
	c.logger.Info("Database connection established")
	return nil
}

func (c *DependencyContainer) initializeCache(ctx context.Context) error {
	cacheConfig := infrastructure.NewConfigProviderAdapter(c.config).GetCacheConfig()

	cache, err := external.NewCacheProviderFactory().CreateCacheProvider(ctx, cacheConfig)
	if err != nil {
		return err
	}

	c.cache = cache
	c.logger.Info("Cache provider initialized",
		ports.F("type", cacheConfig.Type),
		ports.F("enabled", c.config.Weather.EnableCache))
	return nil
}

func (c *DependencyContainer) initializeWeatherProvider(ctx context.Context) error {
	if c.config.Weather.EnableLogging {
		fileLogger, err := infrastructure.NewFileLoggerAdapter(c.config.Weather.LogFilePath)
		if err != nil {
			c.logger.Warn("Failed to create weather request log, provider logging disabled",
				ports.F("error", err))
		} else {
			c.fileLogger = fileLogger
			c.logger.Info("Weather provider logging enabled", ports.F("path", c.config.Weather.LogFilePath))
		}
	}

	provider, err := external.NewOpenWeatherMapProviderAdapter(external.OpenWeatherMapProviderParams{
		APIKey:  c.config.Weather.APIKey,
		BaseURL: c.config.Weather.BaseURL,
		Timeout: c.config.Weather.RequestTimeout,
		Logger:  c.logger,
	})
	if err != nil {
		return err
	}

	c.provider = provider
	return nil
}

func (c *DependencyContainer) initializeTelegram(ctx context.Context) error {
	bot, err := telegram.New(telegram.Options{
		Token:       c.config.Telegram.BotToken,
		PollTimeout: c.config.Telegram.PollTimeout,
		QueueSize:   c.config.Telegram.QueueSize,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}

	c.bot = bot
	return nil
}

func (c *DependencyContainer) assemble() {
	configProvider := infrastructure.NewConfigProviderAdapter(c.config)
	c.metrics = infrastructure.NewPrometheusMetricsCollector()

	var provider ports.WeatherProvider = c.provider
	if c.fileLogger != nil {
		provider = external.NewWeatherProviderLoggingDecorator(c.provider, c.fileLogger)
	}

	health := infrastructure.NewSystemHealthChecker(infrastructure.SystemHealthCheckerConfig{
		DatabaseChecker: infrastructure.NewDatabaseHealthChecker(c.db),
		CacheChecker:    infrastructure.NewCacheHealthChecker(c.config.Cache.Type.String(), c.cache),
		WeatherChecker:  infrastructure.NewWeatherProviderHealthChecker(c.provider),
		ConfigProvider:  configProvider,
	})

	c.runtime = &Runtime{
		Ports: &ports.ApplicationPorts{
			WeatherProvider:        provider,
			WeatherCache:           external.NewWeatherCacheAdapter(c.cache, c.logger),
			UserRepository:         database.NewUserRepositoryAdapter(c.db),
			SubscriptionRepository: database.NewSubscriptionRepositoryAdapter(c.db),
			Messenger:              c.bot.Messenger(),
			CacheMetrics:           c.cache,
			ConfigProvider:         configProvider,
			Logger:                 c.logger,
			Metrics:                c.metrics,
		},
		Events:         c.bot,
		Health:         health,
		MetricsHandler: c.metrics.Handler(),
		Closers:        []func() error{c.Cleanup},
	}
}

// Runtime returns the assembled dependencies
func (c *DependencyContainer) Runtime() *Runtime {
	return c.runtime
}

func (c *DependencyContainer) Database() *gorm.DB {
	return c.db
}

// Cleanup releases the database pool, the Redis client and the request log
func (c *DependencyContainer) Cleanup() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.db != nil {
		keep(database.Close(c.db))
		c.db = nil
	}
	if closer, ok := c.cache.(interface{ Close() error }); ok {
		keep(closer.Close())
		c.cache = nil
	}
	if c.fileLogger != nil {
		keep(c.fileLogger.Close())
		c.fileLogger = nil
	}
	return firstErr
}
