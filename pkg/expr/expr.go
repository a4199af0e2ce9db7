package expr

// Evaluate parses and evaluates an infix expression against ctx.
// It returns exactly one value or exactly one *Error.
func Evaluate(expression string, ctx Context) (float64, error) {
	rpn, err := Parse(expression)
	if err != nil {
		return 0, err
	}
	return EvalRPN(rpn, ctx)
}
