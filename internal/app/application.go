package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"weatherbot.app/internal/adapters/api"
	"weatherbot.app/internal/adapters/scheduler"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/core/conversation"
	"weatherbot.app/internal/core/dispatcher"
	"weatherbot.app/internal/core/i18n"
	"weatherbot.app/internal/core/notification"
	"weatherbot.app/internal/core/reply"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/core/user"
	"weatherbot.app/internal/core/weather"
	"weatherbot.app/internal/ports"
)

type Application struct {
	config  *config.Config
	runtime *Runtime
	ports   *ports.ApplicationPorts
	logger  ports.Logger

	// Use Cases
	weatherUseCase      *weather.UseCase
	subscriptionUseCase *subscription.UseCase
	userUseCase         *user.UseCase
	notificationUseCase *notification.UseCase

	// Adapters
	dispatcher *dispatcher.Dispatcher
	scheduler  *scheduler.Scheduler
	httpServer *api.HTTPServerAdapter

	started    atomic.Bool
	eventsDone chan struct{}
	shutdown   sync.Once
}

// NewApplication connects every production adapter described by cfg
func NewApplication(ctx context.Context, cfg *config.Config, logger ports.Logger) (*Application, error) {
	container, err := NewDependencyContainer(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	app, err := NewApplicationWithDependencies(cfg, container.Runtime())
	if err != nil {
		_ = container.Cleanup()
		return nil, err
	}
	return app, nil
}

// NewApplicationWithDependencies builds the application on top of already
// constructed adapters
func NewApplicationWithDependencies(cfg *config.Config, runtime *Runtime) (*Application, error) {
	if runtime == nil || runtime.Ports == nil || runtime.Events == nil {
		return nil, fmt.Errorf("runtime with ports and an event source is required")
	}

	app := &Application{
		config:     cfg,
		runtime:    runtime,
		ports:      runtime.Ports,
		logger:     runtime.Ports.Logger,
		eventsDone: make(chan struct{}),
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeUseCases() error {
	a.logger.Info("Initializing use cases")

	weatherUseCase, err := weather.NewUseCase(weather.UseCaseDependencies{
		Provider: a.ports.WeatherProvider,
		Cache:    a.ports.WeatherCache,
		Config:   a.ports.ConfigProvider,
		Logger:   a.ports.Logger,
		Metrics:  a.ports.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create weather use case: %w", err)
	}
	a.weatherUseCase = weatherUseCase

	subscriptionUseCase, err := subscription.NewUseCase(subscription.UseCaseDependencies{
		SubscriptionRepo: a.ports.SubscriptionRepository,
		Logger:           a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create subscription use case: %w", err)
	}
	a.subscriptionUseCase = subscriptionUseCase

	userUseCase, err := user.NewUseCase(user.UseCaseDependencies{
		UserRepo: a.ports.UserRepository,
		Logger:   a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create user use case: %w", err)
	}
	a.userUseCase = userUseCase

	return nil
}

func (a *Application) initializeAdapters() error {
	a.logger.Info("Initializing adapters")

	botConfig := a.ports.ConfigProvider.GetBotConfig()
	catalog, err := i18n.Load(a.config.Bot.LocaleBundlePath, botConfig.DefaultLocale)
	if err != nil {
		return fmt.Errorf("load locale bundles: %w", err)
	}
	composer := reply.NewComposer(catalog,
		a.ports.ConfigProvider.GetWeatherConfig().IconURLTemplate,
		botConfig.PopularCities)

	notificationUseCase, err := notification.NewUseCase(notification.UseCaseDependencies{
		SubscriptionUseCase: a.subscriptionUseCase,
		WeatherUseCase:      a.weatherUseCase,
		Composer:            composer,
		Messenger:           a.ports.Messenger,
		Config:              a.ports.ConfigProvider,
		Logger:              a.ports.Logger,
		Metrics:             a.ports.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create notification use case: %w", err)
	}
	a.notificationUseCase = notificationUseCase

	a.dispatcher, err = dispatcher.New(dispatcher.Dependencies{
		WeatherUseCase:      a.weatherUseCase,
		SubscriptionUseCase: a.subscriptionUseCase,
		UserUseCase:         a.userUseCase,
		Conversations:       conversation.NewStore(),
		Composer:            composer,
		Messenger:           a.ports.Messenger,
		Config:              a.ports.ConfigProvider,
		Logger:              a.ports.Logger,
		Metrics:             a.ports.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}

	a.scheduler, err = scheduler.New(scheduler.Options{
		Notifier: a.notificationUseCase,
		Config:   a.ports.ConfigProvider.GetSchedulerConfig(),
		Logger:   a.ports.Logger,
		Metrics:  a.ports.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	a.httpServer, err = api.NewHTTPServerAdapter(api.ServerOptions{
		Config:         a.ports.ConfigProvider.GetServerConfig(),
		Users:          a.userUseCase,
		Subscriptions:  a.subscriptionUseCase,
		Health:         a.runtime.Health,
		MetricsHandler: a.runtime.MetricsHandler,
		Logger:         a.ports.Logger,
		Cache:          a.ports.CacheMetrics,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}

	return nil
}

// Start runs the scheduler, the ops HTTP server and the chat event loop. It
// blocks until ctx is cancelled or the HTTP server fails.
func (a *Application) Start(ctx context.Context) error {
	a.logger.Info("Starting application")

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.httpServer.Start(ctx)
	}()

	a.started.Store(true)
	go func() {
		defer close(a.eventsDone)
		a.runtime.Events.Run(ctx, a.dispatcher)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		<-ctx.Done()
		return nil
	}
}

// Shutdown stops the scheduler, drains the HTTP server, waits for the
// in-flight chat event and releases resources. It is safe to call twice.
func (a *Application) Shutdown(ctx context.Context) error {
	var shutdownErr error

	a.shutdown.Do(func() {
		a.logger.Info("Shutting down application")

		a.scheduler.Stop()

		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("Error shutting down HTTP server", ports.F("error", err))
			shutdownErr = fmt.Errorf("shutdown HTTP server: %w", err)
		}

		if a.started.Load() {
			select {
			case <-a.eventsDone:
			case <-ctx.Done():
				a.logger.Warn("Timed out waiting for the chat event loop")
			}
		}

		for _, closer := range a.runtime.Closers {
			if err := closer(); err != nil {
				a.logger.Warn("Error releasing resources", ports.F("error", err))
			}
		}

		a.logger.Info("Application shutdown complete")
	})

	return shutdownErr
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// Dispatcher returns the chat event dispatcher
func (a *Application) Dispatcher() *dispatcher.Dispatcher {
	return a.dispatcher
}

// Scheduler returns the notification scheduler
func (a *Application) Scheduler() *scheduler.Scheduler {
	return a.scheduler
}

// HTTPServer returns the ops HTTP adapter
func (a *Application) HTTPServer() *api.HTTPServerAdapter {
	return a.httpServer
}
