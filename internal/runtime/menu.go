package runtime

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// handleMenu is the transition function of ModeMenu. Menu pages are not
// implemented: Clear returns to the mode the menu was opened from.
func (m *Machine) handleMenu(ctx context.Context, s *domain.State, key domain.Key) {
	if key != domain.KeyClear && key != domain.KeyOnAC {
		return
	}
	prev := s.PrevMode
	if prev == "" || prev == domain.ModeMenu {
		prev = domain.ModeEditing
	}
	s.PrevMode = ""
	m.setMode(ctx, s, prev)
}
