package runtime

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// handleError is the transition function of ModeShowingError. Every key
// dismisses the error; only digits and errorReentryKeys are then typed.
func (m *Machine) handleError(ctx context.Context, s *domain.State, key domain.Key) {
	m.clear(ctx, s)
	if key.IsDigit() || errorReentryKeys[key] {
		m.handleEditing(ctx, s, key)
	}
}
