/*
Package expr evaluates infix calculator expressions.

Evaluation runs in two stages. Parse tokenizes the text and reorders it into
postfix (RPN) with the shunting-yard algorithm; EvalRPN interprets the postfix
sequence on a single value stack against a Context holding the variable
environment and the angle mode. Evaluate runs both.

	v, err := expr.Evaluate("2^3^2", expr.Context{})  // 512
	_, err = expr.Evaluate("5/0", expr.Context{})     // errors.Is(err, expr.ErrDivisionByZero)

The package holds no mutable state: every call is a pure function of its inputs
and is safe for concurrent use. All sequences are bounded by MaxTokens; an
expression that needs more is rejected with a stack overflow error.
*/
package expr
