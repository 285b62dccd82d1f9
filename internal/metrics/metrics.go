package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nimda/connector-probe/internal/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
)

const (
	namespace = "connector_probe"
)

// PrometheusMetrics implements interfaces.Metrics on a Prometheus registry
type PrometheusMetrics struct {
	registry    *prometheus.Registry
	attempts    *prometheus.CounterVec
	reachable   *prometheus.CounterVec
	unreachable *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the probe series on a fresh registry
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		registry: registry,
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Total number of connection attempts",
		}, []string{"protocol"}),
		reachable: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reachable_total",
			Help:      "Total number of targets that accepted a connection",
		}, []string{"protocol"}),
		unreachable: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unreachable_total",
			Help:      "Total number of targets that failed with a connection error",
		}, []string{"protocol"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connect_duration_seconds",
			Help:      "Duration of connection attempts in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"protocol"}),
	}
}

func (m *PrometheusMetrics) IncAttempts(protocol string) {
	m.attempts.WithLabelValues(protocol).Inc()
}

func (m *PrometheusMetrics) IncReachable(protocol string) {
	m.reachable.WithLabelValues(protocol).Inc()
}

func (m *PrometheusMetrics) IncUnreachable(protocol string) {
	m.unreachable.WithLabelValues(protocol).Inc()
}

func (m *PrometheusMetrics) ObserveLatency(protocol string, duration time.Duration) {
	m.latency.WithLabelValues(protocol).Observe(duration.Seconds())
}

// Registry exposes the underlying registry for gathering
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (m *PrometheusMetrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zlog.Debug().Err(err).Msg("Metrics server shutdown")
		}
	}()

	zlog.Info().Str("addr", addr).Msg("Serving metrics")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var _ interfaces.Metrics = (*PrometheusMetrics)(nil)
