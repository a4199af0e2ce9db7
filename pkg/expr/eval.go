package expr

import (
	"math"

	"github.com/aretw0/abacus/pkg/domain"
)

// DivisionEpsilon is the smallest denominator magnitude accepted by '/'.
const DivisionEpsilon = 1e-15

// MaxFactorial is the largest n whose factorial is finite in float64.
const MaxFactorial = 170

// factorials is a fixed-size lookup table computed at init and read-only afterwards.
var factorials [MaxFactorial + 1]float64

func init() {
	factorials[0] = 1
	for i := 1; i < len(factorials); i++ {
		factorials[i] = factorials[i-1] * float64(i)
	}
}

// Context is the read-only environment of one evaluation.
type Context struct {
	Vars    domain.Variables
	Degrees bool
}

// EvalRPN interprets a postfix sequence on a single value stack.
func EvalRPN(rpn RPN, ctx Context) (float64, error) {
	stack := make([]float64, 0, 16)

	push := func(t Token, v float64) error {
		if len(stack) >= MaxTokens {
			return newError(KindStackOverflow, t.Pos, "value stack exceeds %d entries", MaxTokens)
		}
		stack = append(stack, v)
		return nil
	}

	for _, t := range rpn {
		var err error
		switch t.Kind {
		case TokenNumber:
			err = push(t, t.Number)
		case TokenConstant:
			err = push(t, t.Constant.Value())
		case TokenVariable:
			err = push(t, ctx.Vars.Get(t.Var))

		case TokenOperator:
			if len(stack) < 2 {
				return 0, newError(KindSyntax, t.Pos, "operator %q is missing an operand", t.Op)
			}
			b, a := stack[len(stack)-1], stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			v, opErr := applyOperator(t, a, b)
			if opErr != nil {
				return 0, opErr
			}
			err = push(t, v)

		case TokenUnaryMinus:
			if len(stack) < 1 {
				return 0, newError(KindSyntax, t.Pos, "'-' is missing an operand")
			}
			stack[len(stack)-1] = -stack[len(stack)-1]

		case TokenFunction:
			if len(stack) < 1 {
				return 0, newError(KindSyntax, t.Pos, "%s is missing an argument", t.Func)
			}
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			v, fnErr := applyFunction(t, x, ctx.Degrees)
			if fnErr != nil {
				return 0, fnErr
			}
			err = push(t, v)

		default:
			return 0, newError(KindSyntax, t.Pos, "unexpected %s in postfix sequence", t)
		}
		if err != nil {
			return 0, err
		}
	}

	if len(stack) != 1 {
		return 0, newError(KindSyntax, -1, "expression leaves %d values", len(stack))
	}
	return stack[0], nil
}

func applyOperator(t Token, a, b float64) (float64, error) {
	var v float64
	switch t.Op {
	case '+':
		v = a + b
	case '-':
		v = a - b
	case '*':
		v = a * b
	case '/':
		if math.Abs(b) < DivisionEpsilon {
			return 0, newError(KindDivisionByZero, t.Pos, "divisor is zero")
		}
		v = a / b
	case '^':
		v = math.Pow(a, b)
	default:
		return 0, newError(KindSyntax, t.Pos, "unknown operator %q", t.Op)
	}

	switch {
	case math.IsNaN(v):
		return 0, newError(KindDomain, t.Pos, "%g %c %g is undefined", a, t.Op, b)
	case math.IsInf(v, 0):
		return 0, newError(KindOverflow, t.Pos, "%g %c %g is out of range", a, t.Op, b)
	}
	return v, nil
}

func applyFunction(t Token, x float64, degrees bool) (float64, error) {
	const toRad = math.Pi / 180
	const toDeg = 180 / math.Pi

	var v float64
	switch t.Func {
	case FuncSin, FuncCos, FuncTan:
		if degrees {
			x *= toRad
		}
		switch t.Func {
		case FuncSin:
			v = math.Sin(x)
		case FuncCos:
			v = math.Cos(x)
		default:
			v = math.Tan(x)
		}
	case FuncAsin, FuncAcos, FuncAtan:
		switch t.Func {
		case FuncAsin:
			v = math.Asin(x)
		case FuncAcos:
			v = math.Acos(x)
		default:
			v = math.Atan(x)
		}
		if degrees {
			v *= toDeg
		}
	case FuncLog, FuncLog10:
		v = math.Log10(x)
	case FuncLn:
		v = math.Log(x)
	case FuncSqrt:
		v = math.Sqrt(x)
	case FuncAbs:
		v = math.Abs(x)
	case FuncExp:
		v = math.Exp(x)
	case FuncSinh:
		v = math.Sinh(x)
	case FuncCosh:
		v = math.Cosh(x)
	case FuncTanh:
		v = math.Tanh(x)
	case FuncFactorial:
		if x < 0 || x > MaxFactorial || x != math.Trunc(x) {
			return 0, newError(KindDomain, t.Pos, "factorial needs an integer in 0..%d, got %g", MaxFactorial, x)
		}
		v = factorials[int(x)]
	default:
		return 0, newError(KindSyntax, t.Pos, "unknown function")
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, newError(KindDomain, t.Pos, "%s(%g) is undefined", t.Func, x)
	}
	return v, nil
}
