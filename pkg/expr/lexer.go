package expr

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/abacus/pkg/domain"
)

type pattern[T any] struct {
	text  string
	value T
}

// Patterns are matched longest first, so "sinh" wins over "sin" and "log10" over "log".
var (
	functionPatterns = longestFirst([]pattern[Func]{
		{"sin⁻¹", FuncAsin}, {"cos⁻¹", FuncAcos}, {"tan⁻¹", FuncAtan},
		{"sin", FuncSin}, {"cos", FuncCos}, {"tan", FuncTan},
		{"asin", FuncAsin}, {"acos", FuncAcos}, {"atan", FuncAtan},
		{"sinh", FuncSinh}, {"cosh", FuncCosh}, {"tanh", FuncTanh},
		{"log", FuncLog}, {"ln", FuncLn}, {"log10", FuncLog10},
		{"sqrt", FuncSqrt}, {"√", FuncSqrt}, {"abs", FuncAbs}, {"exp", FuncExp},
	})
	constantPatterns = longestFirst([]pattern[Constant]{
		{"π", ConstPi}, {"pi", ConstPi}, {"e", ConstE},
	})
	variablePatterns = longestFirst(variableTable())
)

func variableTable() []pattern[domain.Variable] {
	vars := domain.AllVariables()
	out := make([]pattern[domain.Variable], len(vars))
	for i, v := range vars {
		out[i] = pattern[domain.Variable]{v.String(), v}
	}
	return out
}

func longestFirst[T any](ps []pattern[T]) []pattern[T] {
	sort.SliceStable(ps, func(i, j int) bool { return len(ps[i].text) > len(ps[j].text) })
	return ps
}

func match[T any](ps []pattern[T], s string) (T, int, bool) {
	for _, p := range ps {
		if strings.HasPrefix(s, p.text) {
			return p.value, len(p.text), true
		}
	}
	var zero T
	return zero, 0, false
}

// lexer turns expression text into tokens, tracking whether an operand is expected
// so that '-' can be classified as unary or binary.
type lexer struct {
	src           string
	pos           int
	expectOperand bool
	tokens        []Token
}

// Tokenize splits an expression into tokens. The returned slice does not include
// the TokenEnd marker.
func Tokenize(expression string) ([]Token, error) {
	l := &lexer{src: expression, expectOperand: true, tokens: make([]Token, 0, 16)}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) emit(t Token) error {
	if len(l.tokens) >= MaxTokens {
		return newError(KindStackOverflow, t.Pos, "more than %d tokens", MaxTokens)
	}
	l.tokens = append(l.tokens, t)
	return nil
}

func (l *lexer) run() error {
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return nil
		}
		if err := l.next(); err != nil {
			return err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) next() error {
	start := l.pos
	rest := l.src[start:]
	ch := rest[0]

	// 1. Numeric literal
	if isDigit(ch) || ch == '.' {
		n, width, err := scanNumber(rest)
		switch {
		case errors.Is(err, strconv.ErrRange):
			return newError(KindOverflow, start, "number %q out of range", rest[:width])
		case err != nil:
			return newError(KindSyntax, start, "malformed number")
		}
		l.pos += width
		l.expectOperand = false
		return l.emit(Token{Kind: TokenNumber, Number: n, Pos: start})
	}

	// 2. Function name
	if f, width, ok := match(functionPatterns, rest); ok {
		l.pos += width
		l.expectOperand = true
		return l.emit(Token{Kind: TokenFunction, Func: f, Pos: start})
	}

	// 3. Constant
	if c, width, ok := match(constantPatterns, rest); ok {
		l.pos += width
		l.expectOperand = false
		return l.emit(Token{Kind: TokenConstant, Constant: c, Pos: start})
	}

	// 4. Variable
	if v, width, ok := match(variablePatterns, rest); ok {
		l.pos += width
		l.expectOperand = false
		return l.emit(Token{Kind: TokenVariable, Var: v, Pos: start})
	}

	// 5. Single-character operators, parentheses and the factorial postfix
	l.pos++
	switch ch {
	case '+', '*', '/', '^':
		if l.expectOperand {
			return newError(KindSyntax, start, "operator %q without left operand", ch)
		}
		l.expectOperand = true
		return l.emit(Token{Kind: TokenOperator, Op: ch, Pos: start})
	case '-':
		kind := TokenOperator
		if l.expectOperand {
			kind = TokenUnaryMinus
		}
		l.expectOperand = true
		return l.emit(Token{Kind: kind, Op: '-', Pos: start})
	case '(':
		l.expectOperand = true
		return l.emit(Token{Kind: TokenLeftParen, Pos: start})
	case ')':
		if l.expectOperand {
			return newError(KindSyntax, start, "unexpected ')'")
		}
		l.expectOperand = false
		return l.emit(Token{Kind: TokenRightParen, Pos: start})
	case '!':
		if l.expectOperand {
			return newError(KindSyntax, start, "'!' without operand")
		}
		l.expectOperand = false
		return l.emit(Token{Kind: TokenFunction, Func: FuncFactorial, Pos: start})
	}

	r, _ := utf8.DecodeRuneInString(rest)
	return newError(KindSyntax, start, "unknown character %q", r)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// scanNumber reads digits with an optional fraction and an optional exponent.
// The exponent is only consumed when at least one digit follows it, so "2e"
// scans as 2 and leaves "e" for the constant table.
func scanNumber(s string) (float64, int, error) {
	i := 0
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, 0, strconv.ErrSyntax
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	return v, i, err
}
