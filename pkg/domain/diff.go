package domain

import "slices"

// ViewDiff represents the changes between two views.
// It is designed to be serialized to JSON for partial updates on the client.
type ViewDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id,omitempty"`

	Input      *string  `json:"input,omitempty"`
	Cursor     *int     `json:"cursor,omitempty"`
	Result     *string  `json:"result,omitempty"`
	Error      *string  `json:"error,omitempty"`
	Mode       *Mode    `json:"mode,omitempty"`
	Indicators []string `json:"indicators,omitempty"`
}

// Diff calculates the difference between oldView and newView.
// If oldView is nil, it returns a diff representing the entire newView (initial load).
// It returns nil when nothing changed.
func Diff(sessionID string, oldView, newView *View) *ViewDiff {
	if newView == nil {
		return nil
	}

	diff := &ViewDiff{SessionID: sessionID}

	// 1. Text fields
	if oldView == nil || oldView.Input != newView.Input {
		diff.Input = &newView.Input
	}
	if oldView == nil || oldView.Cursor != newView.Cursor {
		diff.Cursor = &newView.Cursor
	}
	if oldView == nil || oldView.Result != newView.Result {
		diff.Result = &newView.Result
	}
	if oldView == nil || oldView.Error != newView.Error {
		diff.Error = &newView.Error
	}
	if oldView == nil || oldView.Mode != newView.Mode {
		diff.Mode = &newView.Mode
	}

	// 2. Indicators are sent whole when any of them changed.
	if oldView == nil || !slices.Equal(oldView.Indicators, newView.Indicators) {
		diff.Indicators = slices.Clone(newView.Indicators)
		if diff.Indicators == nil {
			diff.Indicators = []string{}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *ViewDiff) IsEmpty() bool {
	return d.Input == nil &&
		d.Cursor == nil &&
		d.Result == nil &&
		d.Error == nil &&
		d.Mode == nil &&
		d.Indicators == nil
}
