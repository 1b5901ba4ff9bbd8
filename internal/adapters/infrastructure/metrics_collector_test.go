package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetricsCollector)(nil)

func findFamily(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func TestPrometheusMetricsCollector_Counters(t *testing.T) {
	m := NewPrometheusMetricsCollector()
	ctx := context.Background()

	m.RecordCacheHit(ctx)
	m.RecordCacheHit(ctx)
	m.RecordCacheMiss(ctx)
	m.RecordWeatherAPICall(ctx, "openweathermap", true)
	m.RecordWeatherAPICall(ctx, "openweathermap", false)
	m.RecordEvent(ctx, "callback")
	m.RecordNotification(ctx, "sent")
	m.RecordNotification(ctx, "sent")
	m.RecordNotification(ctx, "not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.weatherAPICalls.WithLabelValues("openweathermap", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("callback")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.notifications.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("not_found")))
}

func TestPrometheusMetricsCollector_TickHistogram(t *testing.T) {
	m := NewPrometheusMetricsCollector()

	m.ObserveTick(context.Background(), 2*time.Second)
	m.ObserveTick(context.Background(), 40*time.Second)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	family := findFamily(t, families, "weatherbot_notification_tick_duration_seconds")
	require.Len(t, family.GetMetric(), 1)
	histogram := family.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), histogram.GetSampleCount())
	assert.InDelta(t, 42.0, histogram.GetSampleSum(), 0.001)
}

func TestPrometheusMetricsCollector_SeparateRegistries(t *testing.T) {
	first := NewPrometheusMetricsCollector()
	second := NewPrometheusMetricsCollector()

	first.RecordEvent(context.Background(), "text")

	assert.Equal(t, 1.0, testutil.ToFloat64(first.events.WithLabelValues("text")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.events.WithLabelValues("text")))
}

func TestPrometheusMetricsCollector_Handler(t *testing.T) {
	m := NewPrometheusMetricsCollector()
	m.RecordEvent(context.Background(), "command")

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `weatherbot_chat_events_total{kind="command"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
