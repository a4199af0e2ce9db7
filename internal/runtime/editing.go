package runtime

import (
	"context"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
)

// handleEditing is the transition function of ModeEditing.
func (m *Machine) handleEditing(ctx context.Context, s *domain.State, key domain.Key) {
	switch key {
	case domain.KeyEqual:
		m.execute(ctx, s)
		return
	case domain.KeyClear, domain.KeyOnAC:
		m.clear(ctx, s)
		return
	case domain.KeyBackspace:
		deleteLast(s)
		return
	}

	t, ok := textFor(s, key)
	if !ok {
		// Menu stubs and prefixes like RCL type nothing.
		m.logger.Debug("key ignored", "session_id", s.SessionID, "key", key)
		return
	}
	m.insert(ctx, s, key, t)
}

// execute evaluates the buffer. A failure changes only the display fields:
// the buffer and the variables stay exactly as they were.
func (m *Machine) execute(ctx context.Context, s *domain.State) {
	if s.Buffer == "" || s.Buffer == "0" {
		return
	}

	start := time.Now()
	value, err := m.evaluate(s.Buffer, expr.Context{Vars: s.Vars, Degrees: s.Degrees})
	elapsed := time.Since(start)

	event := &domain.EvaluateEvent{
		EventBase:  m.base(domain.EventEvaluate, s),
		Expression: s.Buffer,
		Duration:   elapsed,
	}

	if err != nil {
		kind := expr.KindOf(err)
		if kind == expr.KindNone {
			kind = expr.KindSyntax
		}
		s.Error = kind.Label()
		s.ErrorKind = kind.String()
		s.Result = ""
		m.record(s, domain.HistoryEntry{Expression: s.Buffer, Error: s.Error})
		m.logger.Warn("calculation failed", "session_id", s.SessionID, "expression", s.Buffer, "error", err)
		m.setMode(ctx, s, domain.ModeShowingError)

		event.ErrorKind = kind.String()
		m.emitEvaluate(ctx, event)
		return
	}

	s.Vars.Set(domain.VarAns, value)
	s.Result = s.Format.Format(value)
	s.Error = ""
	s.ErrorKind = ""
	s.Fresh = true
	m.record(s, domain.HistoryEntry{Expression: s.Buffer, Value: value, Display: s.Result})
	m.logger.Info("calculation", "session_id", s.SessionID, "expression", s.Buffer, "result", value)
	m.setMode(ctx, s, domain.ModeShowingResult)

	event.Value = value
	m.emitEvaluate(ctx, event)
}

func (m *Machine) record(s *domain.State, entry domain.HistoryEntry) {
	if m.historyLimit == 0 {
		return
	}
	s.History = append(s.History, entry)
	if over := len(s.History) - m.historyLimit; over > 0 {
		s.History = append([]domain.HistoryEntry(nil), s.History[over:]...)
	}
}

func (m *Machine) emitEvaluate(ctx context.Context, event *domain.EvaluateEvent) {
	if m.hooks.OnEvaluate != nil {
		m.hooks.OnEvaluate(ctx, event)
	}
}
