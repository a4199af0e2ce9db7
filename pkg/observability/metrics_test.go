package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnKey(ctx, &domain.KeyEvent{Key: domain.Key1})
	hooks.OnKey(ctx, &domain.KeyEvent{Key: domain.Key1})
	hooks.OnReject(ctx, &domain.KeyEvent{Key: domain.KeyDot})
	hooks.OnEvaluate(ctx, &domain.EvaluateEvent{Expression: "1+1", Value: 2, Duration: time.Microsecond})
	hooks.OnEvaluate(ctx, &domain.EvaluateEvent{Expression: "1/0", ErrorKind: "division_by_zero"})
	hooks.OnTransition(ctx, &domain.TransitionEvent{From: domain.ModeEditing, To: domain.ModeShowingResult})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Keys.WithLabelValues(domain.Key1.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues(domain.KeyDot.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("division_by_zero")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues(string(domain.ModeEditing), string(domain.ModeShowingResult))))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestCombineHooks(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{
		OnKey: func(context.Context, *domain.KeyEvent) { order = append(order, "a") },
	}
	b := domain.LifecycleHooks{
		OnKey:      func(context.Context, *domain.KeyEvent) { order = append(order, "b") },
		OnEvaluate: func(context.Context, *domain.EvaluateEvent) { order = append(order, "eval") },
	}

	combined := observability.CombineHooks(a, domain.LifecycleHooks{}, b)
	combined.OnKey(context.Background(), &domain.KeyEvent{})
	combined.OnEvaluate(context.Background(), &domain.EvaluateEvent{})

	assert.Equal(t, []string{"a", "b", "eval"}, order)
	assert.Nil(t, combined.OnTransition)
	assert.Nil(t, combined.OnReject)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hooks := observability.LogHooks(logger)
	hooks.OnEvaluate(context.Background(), &domain.EvaluateEvent{Expression: "2+2", Value: 4})
	hooks.OnEvaluate(context.Background(), &domain.EvaluateEvent{Expression: "1/0", ErrorKind: "division_by_zero"})

	out := buf.String()
	assert.Contains(t, out, "expression=2+2")
	assert.Contains(t, out, "kind=division_by_zero")
}
