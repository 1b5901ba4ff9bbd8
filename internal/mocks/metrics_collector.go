package mocks

import (
	"context"
	"sync"
	"time"
)

// MetricsCollector counts recorded metrics by name
type MetricsCollector struct {
	mu     sync.Mutex
	counts map[string]int
	ticks  []time.Duration
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{counts: make(map[string]int)}
}

func (m *MetricsCollector) RecordCacheHit(ctx context.Context)  { m.inc("cache_hit") }
func (m *MetricsCollector) RecordCacheMiss(ctx context.Context) { m.inc("cache_miss") }

func (m *MetricsCollector) RecordWeatherAPICall(ctx context.Context, provider string, success bool) {
	if success {
		m.inc("weather_api_success")
		return
	}
	m.inc("weather_api_failure")
}

func (m *MetricsCollector) RecordEvent(ctx context.Context, kind string) { m.inc("event:" + kind) }

func (m *MetricsCollector) RecordNotification(ctx context.Context, outcome string) {
	m.inc("notification:" + outcome)
}

func (m *MetricsCollector) ObserveTick(ctx context.Context, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, duration)
}

// Count returns how many times the named metric was recorded
func (m *MetricsCollector) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

// Ticks returns the number of observed ticks
func (m *MetricsCollector) Ticks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks)
}

func (m *MetricsCollector) inc(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
}
