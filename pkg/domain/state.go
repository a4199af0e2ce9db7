package domain

import "unicode/utf8"

// Mode is the tag of the input session state machine.
type Mode string

const (
	ModeEditing       Mode = "editing"        // Typing an expression
	ModeShowingResult Mode = "showing_result" // Last evaluation succeeded
	ModeShowingError  Mode = "showing_error"  // Last evaluation failed
	ModeMenu          Mode = "menu"           // MODE key pressed; keys are ignored until CLEAR
)

// StatusComputation is the only calculator status the session supports.
const StatusComputation = "COMP"

// DefaultHistoryLimit bounds State.History.
const DefaultHistoryLimit = 32

// HistoryEntry records one evaluation attempt. Failed attempts carry the
// error label instead of a value.
type HistoryEntry struct {
	Expression string  `json:"expression"`
	Value      float64 `json:"value,omitempty"`
	Display    string  `json:"display,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// State represents the current snapshot of an input session.
type State struct {
	// SessionID identifies the session in a store. Empty for local sessions.
	SessionID string `json:"session_id,omitempty"`

	// Mode is the current state machine tag.
	Mode Mode `json:"mode"`

	// PrevMode is the mode to return to when leaving the menu.
	PrevMode Mode `json:"prev_mode,omitempty"`

	// Buffer is the expression being typed. "0" is the idle placeholder.
	Buffer string `json:"buffer"`

	// Fresh means the next digit or point replaces the buffer.
	Fresh bool `json:"fresh"`

	// Shift and Alpha are one-shot modifiers cleared by the next non-modifier key.
	Shift bool `json:"shift,omitempty"`
	Alpha bool `json:"alpha,omitempty"`

	// Store is armed by STO: the next variable key receives Ans.
	Store bool `json:"store,omitempty"`

	// Degrees selects degree angles for trigonometric functions.
	Degrees bool `json:"degrees"`

	// Format is the result display format.
	Format DisplayFormat `json:"format"`

	// Vars holds Ans and the user variables.
	Vars Variables `json:"vars"`

	// Result is the formatted text of the last successful evaluation.
	Result string `json:"result,omitempty"`

	// Error is the display label of the last failed evaluation.
	Error string `json:"error,omitempty"`

	// ErrorKind is the machine-readable kind of Error.
	ErrorKind string `json:"error_kind,omitempty"`

	// History lists recent evaluations, oldest first.
	History []HistoryEntry `json:"history,omitempty"`

	// Sealed carries an encrypted snapshot when the session is stored through
	// an encrypting store. Every other field of such an envelope is empty.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewState creates an idle session: buffer "0", editing, degrees, general format.
func NewState() *State {
	return &State{
		Mode:    ModeEditing,
		Buffer:  "0",
		Fresh:   true,
		Degrees: true,
		Format:  GeneralFormat,
	}
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	cp := *s
	if s.History != nil {
		cp.History = make([]HistoryEntry, len(s.History))
		copy(cp.History, s.History)
	}
	if s.Sealed != nil {
		cp.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &cp
}

// Cursor is the insertion point, in runes, at the end of the buffer.
func (s *State) Cursor() int {
	return utf8.RuneCountInString(s.Buffer)
}

// AngleIndicator returns "D" in degree mode and "R" in radian mode.
func (s *State) AngleIndicator() string {
	if s.Degrees {
		return "D"
	}
	return "R"
}
