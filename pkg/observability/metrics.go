package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "abacus"

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	registry *prometheus.Registry

	Inputs      *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
	Evaluations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec

	StoreOps      *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry, so several engines
// (or tests) never collide on the global default registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Inputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inputs_total",
				Help:      "Accepted input events by type",
			},
			[]string{"type"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Input events rejected as no-ops, by type",
			},
			[]string{"type"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Evaluation attempts by operator and outcome",
			},
			[]string{"operator", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of evaluations",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 8),
			},
			[]string{"operator"},
		),
		StoreOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Session store operations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of session store operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(m.Inputs, m.Rejections, m.Evaluations, m.Duration, m.StoreOps, m.StoreDuration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInput: func(ctx context.Context, e *domain.InputEvent) {
			m.Inputs.WithLabelValues(string(e.Input.Type)).Inc()
		},
		OnReject: func(ctx context.Context, e *domain.InputEvent) {
			m.Rejections.WithLabelValues(string(e.Input.Type)).Inc()
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluationEvent) {
			m.Evaluations.WithLabelValues(string(e.Operator), "ok").Inc()
			m.Duration.WithLabelValues(string(e.Operator)).Observe(e.Duration.Seconds())
		},
		OnError: func(ctx context.Context, e *domain.EvaluationEvent) {
			m.Evaluations.WithLabelValues(string(e.Operator), string(e.Error)).Inc()
			m.Duration.WithLabelValues(string(e.Operator)).Observe(e.Duration.Seconds())
		},
	}
}

// ObserveStore records one session store operation.
// Outcome is "ok", "not_found" or "error".
func (m *Metrics) ObserveStore(op string, d time.Duration, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	m.StoreOps.WithLabelValues(op, outcome).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(d.Seconds())
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
