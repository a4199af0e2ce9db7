package domain

import "strings"

// Variable identifies one slot of the fixed variable set.
type Variable uint8

const (
	VarAns Variable = iota
	VarX
	VarY
	VarA
	VarB
	VarC
	VarD
	VarM
	variableCount
)

var variableNames = [variableCount]string{"Ans", "X", "Y", "A", "B", "C", "D", "M"}

// String returns the name the variable has in expression text.
func (v Variable) String() string {
	if v < variableCount {
		return variableNames[v]
	}
	return "?"
}

// AllVariables lists the variable set in declaration order.
func AllVariables() []Variable {
	vars := make([]Variable, variableCount)
	for i := range vars {
		vars[i] = Variable(i)
	}
	return vars
}

// ParseVariable resolves a variable name (case-sensitive, as typed in expressions).
func ParseVariable(name string) (Variable, bool) {
	for i, n := range variableNames {
		if n == name {
			return Variable(i), true
		}
	}
	return 0, false
}

// Variables is the variable environment of a session.
// It is a plain value: copying it snapshots every slot.
type Variables struct {
	Ans float64 `json:"ans"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	A   float64 `json:"a"`
	B   float64 `json:"b"`
	C   float64 `json:"c"`
	D   float64 `json:"d"`
	M   float64 `json:"m"`

	// HasAns reports whether Ans holds the result of a successful evaluation.
	HasAns bool `json:"has_ans"`
}

// Get returns the value bound to v. Unknown variables read as 0.
func (vs Variables) Get(v Variable) float64 {
	switch v {
	case VarAns:
		return vs.Ans
	case VarX:
		return vs.X
	case VarY:
		return vs.Y
	case VarA:
		return vs.A
	case VarB:
		return vs.B
	case VarC:
		return vs.C
	case VarD:
		return vs.D
	case VarM:
		return vs.M
	default:
		return 0
	}
}

// Set binds value to v.
func (vs *Variables) Set(v Variable, value float64) {
	switch v {
	case VarAns:
		vs.Ans = value
		vs.HasAns = true
	case VarX:
		vs.X = value
	case VarY:
		vs.Y = value
	case VarA:
		vs.A = value
	case VarB:
		vs.B = value
	case VarC:
		vs.C = value
	case VarD:
		vs.D = value
	case VarM:
		vs.M = value
	}
}

// Map returns the environment keyed by variable name.
func (vs Variables) Map() map[string]float64 {
	m := make(map[string]float64, variableCount)
	for _, v := range AllVariables() {
		m[v.String()] = vs.Get(v)
	}
	return m
}

// VariablesFromMap builds an environment from name/value pairs.
// Names are matched case-insensitively; unknown names are ignored.
func VariablesFromMap(values map[string]float64) Variables {
	var vs Variables
	for name, value := range values {
		for _, v := range AllVariables() {
			if strings.EqualFold(v.String(), name) {
				vs.Set(v, value)
			}
		}
	}
	return vs
}
