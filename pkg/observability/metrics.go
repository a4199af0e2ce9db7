package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "abacus"

// Metrics holds the collectors fed by the lifecycle hooks.
type Metrics struct {
	Keys        *prometheus.CounterVec
	Rejected    *prometheus.CounterVec
	Evaluations *prometheus.CounterVec
	Duration    prometheus.Histogram
	Transitions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		Keys: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "keys_total",
				Help:      "Total number of keys pressed, by key name.",
			},
			[]string{"key"},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "keys_rejected_total",
				Help:      "Keys whose edit was refused, by key name.",
			},
			[]string{"key"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Evaluations by outcome (ok or the error kind).",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of expression evaluations.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mode_transitions_total",
				Help:      "State machine transitions.",
			},
			[]string{"from", "to"},
		),
	}

	for _, c := range []prometheus.Collector{m.Keys, m.Rejected, m.Evaluations, m.Duration, m.Transitions} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnKey: func(_ context.Context, e *domain.KeyEvent) {
			m.Keys.WithLabelValues(e.Key.String()).Inc()
		},
		OnReject: func(_ context.Context, e *domain.KeyEvent) {
			m.Rejected.WithLabelValues(e.Key.String()).Inc()
		},
		OnEvaluate: func(_ context.Context, e *domain.EvaluateEvent) {
			outcome := "ok"
			if e.ErrorKind != "" {
				outcome = e.ErrorKind
			}
			m.Evaluations.WithLabelValues(outcome).Inc()
			m.Duration.Observe(e.Duration.Seconds())
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
	}
}
