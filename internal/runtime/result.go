package runtime

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// handleResult is the transition function of ModeShowingResult. The buffer
// still shows the evaluated expression until a key starts a new one.
func (m *Machine) handleResult(ctx context.Context, s *domain.State, key domain.Key) {
	switch key {
	case domain.KeyEqual:
		return
	case domain.KeyClear, domain.KeyOnAC, domain.KeyBackspace:
		m.clear(ctx, s)
		return
	}

	// Operators and suffixes continue from Ans, always in general format.
	if t, ok := textFor(s, key); ok && (t.kind == textOperator || t.kind == textSuffix) {
		seeded := domain.FormatGeneralValue(s.Vars.Ans) + t.text
		if len(seeded) > m.maxBuffer {
			m.emitReject(ctx, s, key, domain.ErrBufferFull.Error())
			return
		}
		s.Buffer = seeded
		s.Fresh = false
		s.Result = ""
		m.setMode(ctx, s, domain.ModeEditing)
		return
	}

	// Anything else starts a fresh expression.
	m.clear(ctx, s)
	m.handleEditing(ctx, s, key)
}
