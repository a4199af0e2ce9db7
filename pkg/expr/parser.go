package expr

const (
	// MaxTokens bounds the token list, the output queue, the operator stack and
	// the value stack.
	MaxTokens = 64

	// MaxExpressionLength is the longest expression text accepted, in bytes.
	MaxExpressionLength = 128
)

// Parse converts an infix expression into postfix order.
func Parse(expression string) (RPN, error) {
	if len(expression) > MaxExpressionLength {
		return nil, newError(KindStackOverflow, MaxExpressionLength, "expression longer than %d bytes", MaxExpressionLength)
	}
	tokens, err := Tokenize(expression)
	if err != nil {
		return nil, err
	}
	return shuntingYard(tokens)
}

// shuntingYard reorders tokens with an operator stack. Functions, unary minus
// and '(' wait on the stack; operands go straight to the output.
func shuntingYard(tokens []Token) (RPN, error) {
	out := make(RPN, 0, len(tokens))
	ops := make([]Token, 0, 16)

	emit := func(t Token) error {
		if len(out) >= MaxTokens {
			return newError(KindStackOverflow, t.Pos, "output queue exceeds %d tokens", MaxTokens)
		}
		out = append(out, t)
		return nil
	}
	push := func(t Token) error {
		if len(ops) >= MaxTokens {
			return newError(KindStackOverflow, t.Pos, "operator stack exceeds %d tokens", MaxTokens)
		}
		ops = append(ops, t)
		return nil
	}
	pop := func() Token {
		t := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		return t
	}

	for _, t := range tokens {
		var err error
		switch t.Kind {
		case TokenNumber, TokenConstant, TokenVariable:
			err = emit(t)

		case TokenFunction:
			if t.Func == FuncFactorial {
				// Postfix: its operand is already complete in the output.
				err = emit(t)
			} else {
				err = push(t)
			}

		case TokenUnaryMinus, TokenLeftParen:
			// Prefix operators never pop: "2^-1" keeps '^' waiting for its operand.
			err = push(t)

		case TokenOperator:
			for len(ops) > 0 && shouldPop(ops[len(ops)-1], t.Op) {
				if err = emit(pop()); err != nil {
					return nil, err
				}
			}
			err = push(t)

		case TokenRightParen:
			for len(ops) > 0 && ops[len(ops)-1].Kind != TokenLeftParen {
				if err = emit(pop()); err != nil {
					return nil, err
				}
			}
			if len(ops) == 0 {
				return nil, newError(KindMismatchedParens, t.Pos, "')' without matching '('")
			}
			pop()
			if len(ops) > 0 && ops[len(ops)-1].Kind == TokenFunction {
				err = emit(pop())
			}

		case TokenEnd:
			// Tokenize never produces it; tolerate hand-built token lists.
		}
		if err != nil {
			return nil, err
		}
	}

	for len(ops) > 0 {
		t := pop()
		if t.Kind == TokenLeftParen {
			return nil, newError(KindMismatchedParens, t.Pos, "'(' is never closed")
		}
		if err := emit(t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// shouldPop reports whether the stack top must be output before pushing a
// binary operator op.
func shouldPop(top Token, op byte) bool {
	switch top.Kind {
	case TokenFunction, TokenUnaryMinus:
		return true
	case TokenOperator:
		p, q := precedence(top.Op), precedence(op)
		return p > q || (p == q && !rightAssociative(op))
	default:
		return false
	}
}
