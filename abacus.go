package abacus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
)

// Engine is the high-level entry point for the Abacus library.
// It wraps the internal state machine and provides a simplified API for consumers.
type Engine struct {
	machine      *runtime.Machine
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	degrees      bool
	format       domain.DisplayFormat
	maxBuffer    int
	historyLimit int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDegrees selects the angle mode new sessions start in (default: degrees).
func WithDegrees(degrees bool) Option {
	return func(e *Engine) {
		e.degrees = degrees
	}
}

// WithDisplayFormat selects the result format new sessions start in.
func WithDisplayFormat(f domain.DisplayFormat) Option {
	return func(e *Engine) {
		e.format = f
	}
}

// WithMaxBuffer overrides the edit buffer capacity.
func WithMaxBuffer(n int) Option {
	return func(e *Engine) {
		e.maxBuffer = n
	}
}

// WithHistoryLimit bounds the evaluation history kept per session.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		e.historyLimit = n
	}
}

// New initializes a new Abacus Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		degrees:      true,
		format:       domain.GeneralFormat,
		maxBuffer:    runtime.DefaultMaxBuffer,
		historyLimit: domain.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(eng)
	}

	// Validate the display format by round-tripping it through the parser.
	if _, err := domain.ParseDisplayFormat(eng.format.String()); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}
	if eng.maxBuffer <= 0 || eng.maxBuffer > expr.MaxExpressionLength {
		return nil, fmt.Errorf("invalid engine options: buffer size %d outside 1..%d", eng.maxBuffer, expr.MaxExpressionLength)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.machine = runtime.NewMachine(
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithMaxBuffer(eng.maxBuffer),
		runtime.WithHistoryLimit(eng.historyLimit),
	)
	return eng, nil
}

// Start creates a fresh session state with the engine defaults.
func (e *Engine) Start(sessionID string) *domain.State {
	s := domain.NewState()
	s.SessionID = sessionID
	s.Degrees = e.degrees
	s.Format = e.format
	e.logger.Debug("session started", "session_id", sessionID)
	return s
}

// Press applies one key to the state and returns the next state.
func (e *Engine) Press(ctx context.Context, state *domain.State, key domain.Key) (*domain.State, error) {
	return e.machine.Press(ctx, state, key)
}

// PressAll applies keys in order. On an invalid key it returns the last valid
// state together with the error.
func (e *Engine) PressAll(ctx context.Context, state *domain.State, keys ...domain.Key) (*domain.State, error) {
	return e.machine.PressAll(ctx, state, keys...)
}

// Type presses the keys that spell text, e.g. "sin(30)=".
func (e *Engine) Type(ctx context.Context, state *domain.State, text string) (*domain.State, error) {
	keys, err := domain.KeysForExpression(text)
	if err != nil {
		return state, err
	}
	return e.machine.PressAll(ctx, state, keys...)
}

// Render returns the display fields of the state.
func (e *Engine) Render(state *domain.State) domain.View {
	return e.machine.Render(state)
}

// Evaluate computes an expression directly, without a session, in the
// engine's default angle mode.
func (e *Engine) Evaluate(expression string, vars domain.Variables) (float64, error) {
	return expr.Evaluate(expression, expr.Context{Vars: vars, Degrees: e.degrees})
}

// Degrees reports the angle mode new sessions start in.
func (e *Engine) Degrees() bool {
	return e.degrees
}

// Logger returns the logger the engine was configured with.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
