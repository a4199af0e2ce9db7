package runtime

import "github.com/aretw0/abacus/pkg/domain"

// Render projects a state onto the fields a display draws.
func (m *Machine) Render(s *domain.State) domain.View {
	if s == nil {
		s = domain.NewState()
	}
	return domain.NewView(s)
}
