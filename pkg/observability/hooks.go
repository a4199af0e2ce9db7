package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/abacus/pkg/domain"
)

// CombineHooks fans every event out to all non-nil callbacks, in order.
func CombineHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks

	for _, h := range hooks {
		combined.OnKey = chain(combined.OnKey, h.OnKey)
		combined.OnReject = chain(combined.OnReject, h.OnReject)
		combined.OnEvaluate = chain(combined.OnEvaluate, h.OnEvaluate)
		combined.OnTransition = chain(combined.OnTransition, h.OnTransition)
	}
	return combined
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}

// LogHooks writes one audit line per evaluation and transition.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvaluate: func(ctx context.Context, e *domain.EvaluateEvent) {
			if e.ErrorKind != "" {
				logger.InfoContext(ctx, "evaluation failed",
					"session_id", e.SessionID,
					"expression", e.Expression,
					"kind", e.ErrorKind,
				)
				return
			}
			logger.InfoContext(ctx, "evaluation",
				"session_id", e.SessionID,
				"expression", e.Expression,
				"value", e.Value,
				"duration", e.Duration,
			)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
			)
		},
	}
}
