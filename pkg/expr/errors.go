package expr

import (
	"errors"
	"fmt"
)

// ErrorKind classifies evaluation failures.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindSyntax
	KindMismatchedParens
	KindDivisionByZero
	KindDomain
	KindOverflow
	KindStackOverflow
)

var kindNames = map[ErrorKind]string{
	KindNone:             "none",
	KindSyntax:           "syntax",
	KindMismatchedParens: "mismatched_parens",
	KindDivisionByZero:   "division_by_zero",
	KindDomain:           "domain",
	KindOverflow:         "overflow",
	KindStackOverflow:    "stack_overflow",
}

// String returns the machine-readable name of the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Label returns the short text a calculator display shows for the kind.
func (k ErrorKind) Label() string {
	switch k {
	case KindSyntax, KindMismatchedParens:
		return "Syntax Error"
	case KindDivisionByZero:
		return "Math Error"
	case KindDomain:
		return "Domain Error"
	case KindOverflow:
		return "Overflow"
	case KindStackOverflow:
		return "Stack Error"
	default:
		return "Error"
	}
}

// Sentinels for errors.Is. Every *Error unwraps to the sentinel of its kind.
var (
	ErrSyntax           = errors.New("syntax error")
	ErrMismatchedParens = errors.New("mismatched parentheses")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrDomain           = errors.New("domain error")
	ErrOverflow         = errors.New("overflow")
	ErrStackOverflow    = errors.New("stack overflow")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindMismatchedParens:
		return ErrMismatchedParens
	case KindDivisionByZero:
		return ErrDivisionByZero
	case KindDomain:
		return ErrDomain
	case KindOverflow:
		return ErrOverflow
	case KindStackOverflow:
		return ErrStackOverflow
	default:
		return nil
	}
}

// Error is the single failure an evaluation can return.
type Error struct {
	Kind ErrorKind
	// Pos is the byte offset in the expression, or -1 when the failure has no position.
	Pos int
	Msg string
}

func (e *Error) Error() string {
	base := e.Kind.sentinel()
	if base == nil {
		base = errors.New(e.Kind.String())
	}
	switch {
	case e.Msg != "" && e.Pos >= 0:
		return fmt.Sprintf("%s at position %d: %s", base, e.Pos, e.Msg)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", base, e.Msg)
	default:
		return base.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

func newError(kind ErrorKind, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of an evaluation error. It returns KindNone for nil
// and for errors that did not come from this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}
