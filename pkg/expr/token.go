package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// TokenKind tags the variant held by a Token.
type TokenKind uint8

const (
	TokenNumber TokenKind = iota
	TokenOperator
	TokenFunction
	TokenConstant
	TokenVariable
	TokenUnaryMinus
	TokenLeftParen
	TokenRightParen
	TokenEnd
)

// Func is one of the fixed set of named functions.
type Func uint8

const (
	FuncSin Func = iota
	FuncCos
	FuncTan
	FuncAsin
	FuncAcos
	FuncAtan
	FuncLog
	FuncLn
	FuncLog10
	FuncSqrt
	FuncAbs
	FuncExp
	FuncSinh
	FuncCosh
	FuncTanh
	FuncFactorial
	funcCount
)

var funcNames = [funcCount]string{
	"sin", "cos", "tan", "asin", "acos", "atan", "log", "ln", "log10",
	"sqrt", "abs", "exp", "sinh", "cosh", "tanh", "!",
}

func (f Func) String() string {
	if f < funcCount {
		return funcNames[f]
	}
	return "?"
}

// Constant is a named mathematical constant.
type Constant uint8

const (
	ConstPi Constant = iota
	ConstE
)

// Value returns the float64 value of the constant.
func (c Constant) Value() float64 {
	if c == ConstPi {
		return math.Pi
	}
	return math.E
}

func (c Constant) String() string {
	if c == ConstPi {
		return "π"
	}
	return "e"
}

// Token is one lexical unit. Only the field selected by Kind is meaningful.
type Token struct {
	Kind     TokenKind
	Number   float64
	Op       byte
	Func     Func
	Constant Constant
	Var      domain.Variable
	// Pos is the byte offset of the token in the source expression.
	Pos int
}

// String renders the token the way it appears in a postfix listing.
func (t Token) String() string {
	switch t.Kind {
	case TokenNumber:
		return strconv.FormatFloat(t.Number, 'g', -1, 64)
	case TokenOperator:
		return string(t.Op)
	case TokenFunction:
		return t.Func.String()
	case TokenConstant:
		return t.Constant.String()
	case TokenVariable:
		return t.Var.String()
	case TokenUnaryMinus:
		return "neg"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	default:
		return "end"
	}
}

// RPN is a token sequence in postfix order, produced by Parse and consumed by EvalRPN.
type RPN []Token

// String lists the sequence separated by spaces, e.g. "2 3 4 * +".
func (r RPN) String() string {
	parts := make([]string, len(r))
	for i, t := range r {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	case '^':
		return 3
	default:
		return 0
	}
}

func rightAssociative(op byte) bool {
	return op == '^'
}
