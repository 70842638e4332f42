// Package metrics counts dispatched steps and serves them to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mj1618/websteps/internal/logging"
	"github.com/mj1618/websteps/internal/model"
)

// Steps holds the step counters on a registry of its own, so tests and
// embedders can create as many as they like.
type Steps struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New() *Steps {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Steps{
		registry: reg,
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "websteps",
			Name:      "steps_total",
			Help:      "Dispatched steps by result status.",
		}, []string{"status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "websteps",
			Name:      "step_duration_seconds",
			Help:      "Time spent dispatching a step, by result status.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"status"}),
	}
}

// ObserveStep records one dispatched step.
func (s *Steps) ObserveStep(res model.Result, d time.Duration) {
	status := string(res.Status)
	s.total.WithLabelValues(status).Inc()
	s.duration.WithLabelValues(status).Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (s *Steps) Registry() *prometheus.Registry { return s.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (s *Steps) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (s *Steps) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.New("metrics").Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
