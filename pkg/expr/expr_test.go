package expr

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/pkg/domain"
)

func TestEvaluate_Values(t *testing.T) {
	vars := domain.Variables{Ans: 21, X: 3, Y: 4, HasAns: true}

	tests := []struct {
		name    string
		expr    string
		degrees bool
		want    float64
	}{
		{"precedence", "2+3*4", false, 14},
		{"parentheses", "(2+3)*4", false, 20},
		{"right associative power", "2^3^2", false, 512},
		{"left associative minus", "10-4-3", false, 3},
		{"left associative divide", "64/4/2", false, 8},
		{"whitespace", " 1 +  2 ", false, 3},
		{"unary minus", "-5+2", false, -3},
		{"unary minus binds before power", "-2^2", false, 4},
		{"negative exponent", "2^-1", false, 0.5},
		{"multiply by negative", "2*-3", false, -6},
		{"double minus", "2--3", false, 5},
		{"parenthesised negative", "(-2)^2", false, 4},
		{"leading point", ".5+1", false, 1.5},
		{"trailing point", "1.", false, 1},
		{"exponent literal", "2e3", false, 2000},
		{"negative exponent literal", "1.5e-2", false, 0.015},
		{"pi", "pi", false, math.Pi},
		{"pi glyph", "2*π", false, 2 * math.Pi},
		{"euler", "e", false, math.E},
		{"exp function wins over e", "exp(0)", false, 1},
		{"log is base ten", "log(100)", false, 2},
		{"log10", "log10(1000)", false, 3},
		{"ln", "ln(e)", false, 1},
		{"sqrt", "sqrt(16)", false, 4},
		{"sqrt glyph", "√(9)", false, 3},
		{"sqrt without parentheses", "sqrt16+1", false, 5},
		{"abs", "abs(-3)", false, 3},
		{"sinh", "sinh(0)", false, 0},
		{"cosh", "cosh(0)", false, 1},
		{"tanh longest match", "tanh(0)", false, 0},
		{"factorial", "3!", false, 6},
		{"zero factorial", "0!", false, 1},
		{"factorial binds tighter than power", "2^3!", false, 64},
		{"negated factorial", "-3!", false, -6},
		{"factorial of group", "(1+2)!", false, 6},
		{"function application", "sin(0)+cos(0)", false, 1},
		{"nested functions", "sqrt(abs(-16))", false, 4},
		{"variables", "X^2+Y^2", false, 25},
		{"ans", "Ans*2", false, 42},
		{"unset variable is zero", "M+1", false, 1},
		{"deep nesting", strings.Repeat("(", 30) + "1" + strings.Repeat(")", 30), false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, Context{Vars: vars, Degrees: tt.degrees})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluate_AngleMode(t *testing.T) {
	tests := []struct {
		expr    string
		degrees bool
		want    float64
	}{
		{"sin(30)", true, 0.5},
		{"cos(60)", true, 0.5},
		{"tan(45)", true, 1},
		{"asin(1)", true, 90},
		{"sin⁻¹(1)", true, 90},
		{"cos⁻¹(0)", true, 90},
		{"tan⁻¹(1)", true, 45},
		{"sin(pi/2)", false, 1},
		{"atan(1)", false, math.Pi / 4},
		{"sinh(1)", true, math.Sinh(1)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr, Context{Degrees: tt.degrees})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		kind ErrorKind
		is   error
	}{
		{"division by zero", "5/0", KindDivisionByZero, ErrDivisionByZero},
		{"division by tiny", "1/1e-16", KindDivisionByZero, ErrDivisionByZero},
		{"sqrt of negative", "sqrt(-1)", KindDomain, ErrDomain},
		{"log of zero", "log(0)", KindDomain, ErrDomain},
		{"asin out of range", "asin(2)", KindDomain, ErrDomain},
		{"factorial too large", "171!", KindDomain, ErrDomain},
		{"factorial of fraction", "2.5!", KindDomain, ErrDomain},
		{"factorial of negative", "(-1)!", KindDomain, ErrDomain},
		{"function overflow", "exp(1000)", KindDomain, ErrDomain},
		{"power overflow", "10^400", KindOverflow, ErrOverflow},
		{"product overflow", "1e300*1e300", KindOverflow, ErrOverflow},
		{"power undefined", "(-8)^0.5", KindDomain, ErrDomain},
		{"literal out of range", "1e999", KindOverflow, ErrOverflow},
		{"unclosed paren", "(1+2", KindMismatchedParens, ErrMismatchedParens},
		{"extra close paren", "(1+2))", KindMismatchedParens, ErrMismatchedParens},
		{"operator after operator", "1+*2", KindSyntax, ErrSyntax},
		{"leading operator", "*2", KindSyntax, ErrSyntax},
		{"trailing operator", "1+", KindSyntax, ErrSyntax},
		{"empty parens", "()", KindSyntax, ErrSyntax},
		{"factorial without operand", "!3", KindSyntax, ErrSyntax},
		{"two operands", "2 3", KindSyntax, ErrSyntax},
		{"no implicit multiplication", "2π", KindSyntax, ErrSyntax},
		{"dangling exponent", "2e", KindSyntax, ErrSyntax},
		{"lone point", ".", KindSyntax, ErrSyntax},
		{"empty", "", KindSyntax, ErrSyntax},
		{"unknown character", "2$3", KindSyntax, ErrSyntax},
		{"lowercase variable", "x+1", KindSyntax, ErrSyntax},
		{"too many tokens", strings.Repeat("1+", 40) + "1", KindStackOverflow, ErrStackOverflow},
		{"too deep", strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40), KindStackOverflow, ErrStackOverflow},
		{"too long", strings.Repeat("1", MaxExpressionLength+1), KindStackOverflow, ErrStackOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, Context{})
			require.Error(t, err)
			assert.Zero(t, got, "no partial result alongside an error")
			assert.Equal(t, tt.kind, KindOf(err))
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestEvaluate_FactorialLimit(t *testing.T) {
	got, err := Evaluate("170!", Context{})
	require.NoError(t, err)
	assert.False(t, math.IsInf(got, 0))
	assert.Greater(t, got, 7.25e306)
}

func TestEvaluate_Idempotent(t *testing.T) {
	ctx := Context{Vars: domain.Variables{Ans: 1.5, X: -2, HasAns: true}, Degrees: true}
	for _, e := range []string{"sin(Ans)*X+3!", "2^0.5", "ln(7)/log(7)", "tan(89.9)"} {
		first, err1 := Evaluate(e, ctx)
		second, err2 := Evaluate(e, ctx)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, math.Float64bits(first), math.Float64bits(second), e)
	}
}

func TestError_Position(t *testing.T) {
	_, err := Evaluate("12$", Context{})
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 2, e.Pos)
	assert.Contains(t, e.Error(), "position 2")

	_, err = Evaluate("1+(2", Context{})
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 2, e.Pos)
}

func TestErrorKind_Label(t *testing.T) {
	assert.Equal(t, "Syntax Error", KindSyntax.Label())
	assert.Equal(t, "Syntax Error", KindMismatchedParens.Label())
	assert.Equal(t, "Math Error", KindDivisionByZero.Label())
	assert.Equal(t, "Domain Error", KindDomain.Label())
	assert.Equal(t, "Overflow", KindOverflow.Label())
	assert.Equal(t, "Stack Error", KindStackOverflow.Label())
	assert.Equal(t, "division_by_zero", KindDivisionByZero.String())
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindNone, KindOf(errors.New("other")))
}

func TestParse_RPN(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"2+3*4", "2 3 4 * +"},
		{"(2+3)*4", "2 3 + 4 *"},
		{"2^3^2", "2 3 2 ^ ^"},
		{"sin(30)+1", "30 sin 1 +"},
		{"-2^2", "2 neg 2 ^"},
		{"2*-3", "2 3 neg *"},
		{"2^3!", "2 3 ! ^"},
		{"Ans+π", "Ans π +"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rpn, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rpn.String())
		})
	}
}

func TestTokenize_LongestMatch(t *testing.T) {
	tokens, err := Tokenize("log10(100)+sinh(0)+Ans")
	require.NoError(t, err)
	require.Len(t, tokens, 11)
	assert.Equal(t, FuncLog10, tokens[0].Func)
	assert.Equal(t, FuncSinh, tokens[5].Func)
	assert.Equal(t, TokenVariable, tokens[10].Kind)
	assert.Equal(t, domain.VarAns, tokens[10].Var)
}

func TestEvalRPN_Capacity(t *testing.T) {
	rpn := make(RPN, MaxTokens+1)
	for i := range rpn {
		rpn[i] = Token{Kind: TokenNumber, Number: 1, Pos: i}
	}
	_, err := EvalRPN(rpn, Context{})
	assert.ErrorIs(t, err, ErrStackOverflow)
}
