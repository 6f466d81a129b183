// Package metrics exposes Prometheus collectors for calls to the contest API
// and for responses discarded as stale.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/contesttracker/tracker/internal/errors"
)

const namespace = "contesttracker"

// Metrics owns a private registry so tests and multiple instances do not collide
type Metrics struct {
	registry      *prometheus.Registry
	apiCalls      *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	staleDiscards *prometheus.CounterVec
}

// New creates the collectors and registers them with the Go runtime collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Requests made to the contest API by operation, status and outcome.",
		}, []string{"operation", "status", "outcome"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Round-trip time of contest API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		staleDiscards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses dropped because a newer request for the same state slice was issued.",
		}, []string{"slice"}),
	}
	m.registry.MustRegister(
		m.apiCalls,
		m.apiDuration,
		m.staleDiscards,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAPICall records one round trip. It matches contestapi.Observer.
func (m *Metrics) ObserveAPICall(operation string, status int, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperrors.KindOf(err).String()
	}
	m.apiCalls.WithLabelValues(operation, strconv.Itoa(status), outcome).Inc()
	m.apiDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// StaleDiscarded counts a response dropped for slice
func (m *Metrics) StaleDiscarded(slice string) {
	m.staleDiscards.WithLabelValues(slice).Inc()
}

// RegisterSessionGauge exposes the number of live sessions reported by fn
func (m *Metrics) RegisterSessionGauge(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Browser sessions currently tracked.",
	}, func() float64 {
		return float64(fn())
	}))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
