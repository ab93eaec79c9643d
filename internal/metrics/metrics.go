// Package metrics exposes Prometheus metrics for the lending engine and the
// HTTP API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
)

// Metrics collects engine and HTTP metrics. A disabled Metrics records
// nothing and serves 404 for its handler.
type Metrics struct {
	registry *prometheus.Registry

	transitions        *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec
	events             *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

var _ lending.Observer = (*Metrics)(nil)

// New creates metrics under cfg.Namespace in a private registry.
func New(cfg config.MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{}
	}
	ns := cfg.Namespace

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "lending_transitions_total",
				Help:      "Lifecycle operations by outcome.",
			},
			[]string{"op", "result"},
		),
		transitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "lending_transition_duration_seconds",
				Help:      "Time spent in lifecycle operations, including the transaction.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "notifications_total",
				Help:      "Notifications handed to the outbox, by type and result.",
			},
			[]string{"type", "result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		m.transitions,
		m.transitionDuration,
		m.events,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry, nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTransition records one engine operation.
func (m *Metrics) ObserveTransition(op string, err error, elapsed time.Duration) {
	if m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(op, result(err)).Inc()
	m.transitionDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveEvent records one notification handed to the sink.
func (m *Metrics) ObserveEvent(typ model.NotificationType, err error) {
	if m.events == nil {
		return
	}
	r := "queued"
	if err != nil {
		r = "dropped"
	}
	m.events.WithLabelValues(string(typ), r).Inc()
}

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(route string, code int, elapsed time.Duration) {
	if m.httpRequests == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, lending.ErrNotFound):
		return "not_found"
	case errors.Is(err, lending.ErrForbidden):
		return "forbidden"
	case errors.Is(err, lending.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, lending.ErrValidation):
		return "validation"
	case errors.Is(err, lending.ErrConflict):
		return "conflict"
	}
	return "error"
}
