// Package metrics exposes Prometheus counters for generation runs.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const namespace = "ideate"

// Run outcomes used as the "outcome" label of RunsTotal.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeAborted   = "aborted"
)

// Collector owns a private registry so tests and multiple instances
// never collide on the global one. All methods are safe on a nil
// *Collector, which records nothing.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ItemsTotal      prometheus.Counter
	FailuresTotal   prometheus.Counter
	RunsTotal       *prometheus.CounterVec
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "requests_total",
				Help:      "Total number of generation requests",
			},
			[]string{"model", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "request_duration_seconds",
				Help:      "Generation request duration in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"model"},
		),
		ItemsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "items_total",
			Help:      "Ideas generated and saved to disk",
		}),
		FailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "failed_iterations_total",
			Help:      "Loop iterations that produced no idea because the API call failed",
		}),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "batch",
				Name:      "runs_total",
				Help:      "Finished runs by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one generation request.
func (c *Collector) ObserveRequest(model string, d time.Duration, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.RequestsTotal.WithLabelValues(model, status).Inc()
	c.RequestDuration.WithLabelValues(model).Observe(d.Seconds())
}

// ItemSaved counts a persisted idea.
func (c *Collector) ItemSaved() {
	if c == nil {
		return
	}
	c.ItemsTotal.Inc()
}

// IterationFailed counts an iteration lost to a transport failure.
func (c *Collector) IterationFailed() {
	if c == nil {
		return
	}
	c.FailuresTotal.Inc()
}

// RunFinished counts a finished run under the given outcome.
func (c *Collector) RunFinished(outcome string) {
	if c == nil {
		return
	}
	c.RunsTotal.WithLabelValues(outcome).Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, c *Collector) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
