package infrastructure

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "weatherbot"

// PrometheusMetricsCollector implements the MetricsCollector port on a
// private registry, so tests and multiple instances never collide.
type PrometheusMetricsCollector struct {
	registry *prometheus.Registry

	cacheRequests   *prometheus.CounterVec
	weatherAPICalls *prometheus.CounterVec
	events          *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	tickDuration    prometheus.Histogram
}

// NewPrometheusMetricsCollector registers the bot's metrics plus the Go and
// process collectors
func NewPrometheusMetricsCollector() *PrometheusMetricsCollector {
	m := &PrometheusMetricsCollector{
		registry: prometheus.NewRegistry(),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "weather_cache_requests_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		weatherAPICalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "weather_api_calls_total",
			Help:      "Weather provider calls by provider and result.",
		}, []string{"provider", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chat_events_total",
			Help:      "Inbound chat events by kind.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Scheduled notification attempts by outcome.",
		}, []string{"outcome"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "notification_tick_duration_seconds",
			Help:      "Wall time of one notification fan-out.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}

	m.registry.MustRegister(
		m.cacheRequests,
		m.weatherAPICalls,
		m.events,
		m.notifications,
		m.tickDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *PrometheusMetricsCollector) RecordCacheHit(ctx context.Context) {
	m.cacheRequests.WithLabelValues("hit").Inc()
}

func (m *PrometheusMetricsCollector) RecordCacheMiss(ctx context.Context) {
	m.cacheRequests.WithLabelValues("miss").Inc()
}

func (m *PrometheusMetricsCollector) RecordWeatherAPICall(ctx context.Context, provider string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.weatherAPICalls.WithLabelValues(provider, result).Inc()
}

func (m *PrometheusMetricsCollector) RecordEvent(ctx context.Context, kind string) {
	m.events.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetricsCollector) RecordNotification(ctx context.Context, outcome string) {
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetricsCollector) ObserveTick(ctx context.Context, duration time.Duration) {
	m.tickDuration.Observe(duration.Seconds())
}

// Registry exposes the underlying registry for gathering in tests
func (m *PrometheusMetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
