// Package api serves the bot's operational HTTP surface: health, Prometheus
// metrics and usage statistics. The chat itself never goes through here.
package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const readHeaderTimeout = 5 * time.Second

// HTTPServerAdapter implements the ops HTTP server using Gin framework
type HTTPServerAdapter struct {
	router        *gin.Engine
	server        *http.Server
	users         Counter
	subscriptions Counter
	health        ports.SystemHealthChecker
	cache         ports.CacheMetrics
	logger        ports.Logger
}

// Counter is satisfied by the user and subscription use cases
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type ServerOptions struct {
	Config         ports.ServerConfig
	Users          Counter
	Subscriptions  Counter
	Health         ports.SystemHealthChecker
	MetricsHandler http.Handler
	Logger         ports.Logger

	// Cache is optional; stats omit the cache section without it
	Cache ports.CacheMetrics
}

func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}

	router := gin.New()
	s := &HTTPServerAdapter{
		router:        router,
		users:         opts.Users,
		subscriptions: opts.Subscriptions,
		health:        opts.Health,
		cache:         opts.Cache,
		logger:        opts.Logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes(opts.MetricsHandler)
	return s, nil
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.Users == nil {
		return errors.NewValidationError("user counter is required")
	}
	if opts.Subscriptions == nil {
		return errors.NewValidationError("subscription counter is required")
	}
	if opts.Health == nil {
		return errors.NewValidationError("health checker is required")
	}
	if opts.MetricsHandler == nil {
		return errors.NewValidationError("metrics handler is required")
	}
	if opts.Logger == nil {
		return errors.NewValidationError("logger is required")
	}
	return nil
}

func (s *HTTPServerAdapter) setupRoutes(metrics http.Handler) {
	s.router.GET("/health", s.getHealth)
	s.router.GET("/metrics", gin.WrapH(metrics))

	api := s.router.Group("/api")
	{
		api.GET("/stats", s.getStats)
	}
}

// Start serves until Shutdown is called
func (s *HTTPServerAdapter) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", ports.F("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.NewConfigurationError("HTTP server failed", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *HTTPServerAdapter) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}

func (s *HTTPServerAdapter) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			ports.F("method", c.Request.Method),
			ports.F("path", c.FullPath()),
			ports.F("status", c.Writer.Status()),
			ports.F("duration_ms", time.Since(start).Milliseconds()))
	}
}
