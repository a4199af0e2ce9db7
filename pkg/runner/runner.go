package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// Engine is the part of the calculator the runner drives.
type Engine interface {
	Start(sessionID string) *domain.State
	Press(ctx context.Context, state *domain.State, key domain.Key) (*domain.State, error)
	Render(state *domain.State) domain.View
}

// Runner feeds keys from a source into the engine, one per tick.
type Runner struct {
	engine   Engine
	source   KeySource
	renderer Renderer
	store    ports.StateStore
	logger   *slog.Logger

	sessionID string
	initial   *domain.State
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSource sets where keys come from (default: lines on stdin).
func WithSource(src KeySource) Option {
	return func(r *Runner) {
		r.source = src
	}
}

// WithRenderer sets where displays go (default: text panel on stdout).
func WithRenderer(renderer Renderer) Option {
	return func(r *Runner) {
		r.renderer = renderer
	}
}

// WithStore persists the state after every key under the session ID.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithSessionID names the session. With a store, an existing session of
// that name is resumed.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.sessionID = id
	}
}

// WithInitialState starts from the given state instead of a fresh one.
func WithInitialState(state *domain.State) Option {
	return func(r *Runner) {
		r.initial = state
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner for the engine.
func NewRunner(engine Engine, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.source == nil {
		r.source = NewLineSource(os.Stdin)
	}
	if r.renderer == nil {
		r.renderer = NewTextRenderer(os.Stdout)
	}
	return r
}

// Run processes keys until the source is exhausted or ctx is done, and
// returns the last state. Exhaustion is not an error; cancellation returns
// ctx.Err() together with the last state.
func (r *Runner) Run(ctx context.Context) (*domain.State, error) {
	// 1. Setup Phase
	state, err := r.resolveInitialState(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.renderer.Render(ctx, r.sessionID, r.engine.Render(state)); err != nil {
		return state, fmt.Errorf("render error: %w", err)
	}

	// 2. Execution Loop
	for {
		key, err := r.source.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				r.logger.Debug("key source exhausted", "session_id", r.sessionID)
				return state, nil
			case ctx.Err() != nil:
				return state, ctx.Err()
			case errors.Is(err, domain.ErrUnknownKey):
				r.logger.Warn("ignoring key", "session_id", r.sessionID, "err", err)
				continue
			}
			return state, fmt.Errorf("input error: %w", err)
		}

		next, err := r.engine.Press(ctx, state, key)
		if err != nil {
			// Unknown codes leave the state unchanged.
			r.logger.Warn("ignoring key", "session_id", r.sessionID, "code", uint32(key), "err", err)
			continue
		}
		state = next

		// 3. Commit Phase
		if err := r.saveState(ctx, state); err != nil {
			return state, fmt.Errorf("critical persistence error: %w", err)
		}

		if err := r.renderer.Render(ctx, r.sessionID, r.engine.Render(state)); err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}
	}
}

func (r *Runner) resolveInitialState(ctx context.Context) (*domain.State, error) {
	if r.initial != nil {
		return r.initial, nil
	}
	if r.store != nil && r.sessionID != "" {
		state, err := r.store.Load(ctx, r.sessionID)
		if err == nil {
			r.logger.Info("session resumed", "session_id", r.sessionID)
			return state, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}
	return r.engine.Start(r.sessionID), nil
}

func (r *Runner) saveState(ctx context.Context, state *domain.State) error {
	if r.store == nil || r.sessionID == "" {
		return nil
	}
	if err := r.store.Save(ctx, r.sessionID, state); err != nil {
		return err
	}
	r.logger.Debug("state saved", "session_id", r.sessionID, "mode", state.Mode)
	return nil
}
