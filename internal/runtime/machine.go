package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
)

// DefaultMaxBuffer is the capacity of the edit buffer, in bytes.
const DefaultMaxBuffer = expr.MaxExpressionLength

// transition handles one key for a single mode, mutating the owned copy of the state.
type transition func(ctx context.Context, s *domain.State, key domain.Key)

// Machine is the input session state machine. It holds no session data:
// every call to Press receives a state and returns a new one.
type Machine struct {
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	maxBuffer    int
	historyLimit int
	evaluate     func(string, expr.Context) (float64, error)

	transitions map[domain.Mode]transition
}

// Option configures the Machine.
type Option func(*Machine)

// WithLogger sets the structured logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithMaxBuffer overrides the edit buffer capacity.
func WithMaxBuffer(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxBuffer = n
		}
	}
}

// WithHistoryLimit bounds the evaluation history kept in the state.
// Zero disables history.
func WithHistoryLimit(n int) Option {
	return func(m *Machine) {
		if n >= 0 {
			m.historyLimit = n
		}
	}
}

// NewMachine creates a machine with the given options.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		logger:       logging.NewNop(),
		maxBuffer:    DefaultMaxBuffer,
		historyLimit: domain.DefaultHistoryLimit,
		evaluate:     expr.Evaluate,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.transitions = map[domain.Mode]transition{
		domain.ModeEditing:       m.handleEditing,
		domain.ModeShowingResult: m.handleResult,
		domain.ModeShowingError:  m.handleError,
		domain.ModeMenu:          m.handleMenu,
	}
	return m
}

// Press processes one key and returns the next state. The input state is never mutated.
// The only error is domain.ErrUnknownKey: evaluation failures are reported through
// the returned state (ModeShowingError).
func (m *Machine) Press(ctx context.Context, current *domain.State, key domain.Key) (*domain.State, error) {
	if !key.Valid() {
		return current, fmt.Errorf("%w: %d", domain.ErrUnknownKey, uint32(key))
	}
	if current == nil {
		current = domain.NewState()
	}

	next := current.Snapshot()
	if _, ok := m.transitions[next.Mode]; !ok {
		m.logger.Warn("unknown mode, resetting to editing", "mode", next.Mode)
		next.Mode = domain.ModeEditing
	}

	m.logger.Debug("key pressed", "session_id", next.SessionID, "key", key, "mode", next.Mode)
	m.emitKey(ctx, next, key)

	if key == domain.KeyNone {
		return next, nil
	}

	// 1. Modifiers apply to the next key and survive it being pressed.
	switch key {
	case domain.KeyShift:
		next.Shift = !next.Shift
		return next, nil
	case domain.KeyAlpha:
		next.Alpha = !next.Alpha
		return next, nil
	case domain.KeyMode:
		if next.Mode != domain.ModeMenu {
			next.PrevMode = next.Mode
			m.setMode(ctx, next, domain.ModeMenu)
		}
		return next, nil
	}

	// 2. Settings keys work in every mode except the menu. They leave a result
	// or an expression on display but dismiss an error like any other key.
	if next.Mode != domain.ModeMenu && m.handleGlobal(ctx, next, key) {
		if next.Mode == domain.ModeShowingError {
			m.clear(ctx, next)
		}
		next.Shift, next.Alpha = false, false
		return next, nil
	}
	if key != domain.KeySTO {
		next.Store = false
	}

	// 3. Mode-specific handling.
	m.transitions[next.Mode](ctx, next, key)

	// 4. One-shot modifiers are consumed by any non-modifier key.
	next.Shift, next.Alpha = false, false
	return next, nil
}

// PressAll feeds keys in order, stopping at the first invalid key.
func (m *Machine) PressAll(ctx context.Context, current *domain.State, keys ...domain.Key) (*domain.State, error) {
	state := current
	for _, k := range keys {
		next, err := m.Press(ctx, state, k)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

// handleGlobal processes keys that do not depend on the mode. It reports whether
// the key was consumed.
func (m *Machine) handleGlobal(ctx context.Context, s *domain.State, key domain.Key) bool {
	armed := s.Store
	switch {
	case key == domain.KeyDRG:
		s.Degrees = !s.Degrees
		m.logger.Debug("angle mode changed", "session_id", s.SessionID, "angle", s.AngleIndicator())
	case key == domain.KeyEng:
		s.Format = s.Format.Next()
		if s.Mode == domain.ModeShowingResult && s.Vars.HasAns {
			s.Result = s.Format.Format(s.Vars.Ans)
		}
		m.logger.Debug("display format changed", "session_id", s.SessionID, "format", s.Format.String())
	case key == domain.KeyReset:
		s.Vars = domain.Variables{}
		m.clear(ctx, s)
		m.logger.Info("all memory cleared", "session_id", s.SessionID)
	case key == domain.KeySTO:
		s.Store = true
	case armed && key.IsVariable():
		v, _ := key.Variable()
		s.Vars.Set(v, s.Vars.Ans)
		s.Store = false
		m.logger.Info("stored Ans", "session_id", s.SessionID, "variable", v.String(), "value", s.Vars.Ans)
	default:
		return false
	}
	return true
}

// clear resets the display to the idle placeholder without touching variables.
func (m *Machine) clear(ctx context.Context, s *domain.State) {
	s.Buffer = "0"
	s.Fresh = true
	s.Result = ""
	s.Error = ""
	s.ErrorKind = ""
	m.setMode(ctx, s, domain.ModeEditing)
}

func (m *Machine) setMode(ctx context.Context, s *domain.State, to domain.Mode) {
	from := s.Mode
	if from == to {
		return
	}
	s.Mode = to
	m.logger.Debug("mode transition", "session_id", s.SessionID, "from", from, "to", to)
	if m.hooks.OnTransition != nil {
		m.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: m.base(domain.EventTransition, s),
			From:      from,
			To:        to,
		})
	}
}

func (m *Machine) base(t domain.EventType, s *domain.State) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: s.SessionID}
}

func (m *Machine) emitKey(ctx context.Context, s *domain.State, key domain.Key) {
	if m.hooks.OnKey == nil {
		return
	}
	m.hooks.OnKey(ctx, &domain.KeyEvent{
		EventBase: m.base(domain.EventKey, s),
		Key:       key,
		Mode:      s.Mode,
	})
}

func (m *Machine) emitReject(ctx context.Context, s *domain.State, key domain.Key, reason string) {
	m.logger.Warn("edit rejected", "session_id", s.SessionID, "key", key, "reason", reason, "buffer_len", len(s.Buffer))
	if m.hooks.OnReject == nil {
		return
	}
	m.hooks.OnReject(ctx, &domain.KeyEvent{
		EventBase: m.base(domain.EventRejected, s),
		Key:       key,
		Mode:      s.Mode,
		Reason:    reason,
	})
}
