package llm

import (
	"context"
	"time"

	"github.com/abhisek/ideate/internal/metrics"
)

// MetricsProvider is a decorator that records request counts and latency.
type MetricsProvider struct {
	inner     Provider
	collector *metrics.Collector
}

// WithMetrics wraps a Provider with Prometheus instrumentation.
func WithMetrics(p Provider, c *metrics.Collector) Provider {
	return &MetricsProvider{inner: p, collector: c}
}

func (m *MetricsProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := m.inner.Generate(ctx, req)
	m.collector.ObserveRequest(m.inner.ModelID(), time.Since(start), err)
	return resp, err
}

func (m *MetricsProvider) Ping(ctx context.Context) error {
	return m.inner.Ping(ctx)
}

func (m *MetricsProvider) ModelID() string {
	return m.inner.ModelID()
}
