package domain

// View is the read-only display model produced after every key.
type View struct {
	Input      string   `json:"input"`
	Cursor     int      `json:"cursor"`
	Result     string   `json:"result,omitempty"`
	Error      string   `json:"error,omitempty"`
	Mode       Mode     `json:"mode"`
	Status     string   `json:"status"`
	Angle      string   `json:"angle"`
	Format     string   `json:"format,omitempty"`
	Shift      bool     `json:"shift,omitempty"`
	Alpha      bool     `json:"alpha,omitempty"`
	Store      bool     `json:"store,omitempty"`
	Indicators []string `json:"indicators"`
}

// NewView projects a state onto its display fields.
func NewView(s *State) View {
	v := View{
		Input:  s.Buffer,
		Cursor: s.Cursor(),
		Result: s.Result,
		Error:  s.Error,
		Mode:   s.Mode,
		Status: StatusComputation,
		Angle:  s.AngleIndicator(),
		Format: s.Format.Indicator(),
		Shift:  s.Shift,
		Alpha:  s.Alpha,
		Store:  s.Store,
	}
	if s.Mode == ModeShowingError {
		v.Result = ""
	}

	v.Indicators = append(v.Indicators, v.Angle)
	if s.Shift {
		v.Indicators = append(v.Indicators, "S")
	}
	if s.Alpha {
		v.Indicators = append(v.Indicators, "A")
	}
	if s.Store {
		v.Indicators = append(v.Indicators, "STO")
	}
	if v.Format != "" {
		v.Indicators = append(v.Indicators, v.Format)
	}
	if s.Mode == ModeMenu {
		v.Indicators = append(v.Indicators, "MENU")
	}
	return v
}
