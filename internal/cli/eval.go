package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
	"github.com/aretw0/abacus/pkg/runner"
)

var errNoExpression = errors.New("no expression given")

// EvalOptions configures a one-shot evaluation.
type EvalOptions struct {
	Angle string   // "deg", "rad" or empty for the configured mode
	Vars  []string // NAME=VALUE assignments
	RPN   bool     // also print the postfix form
}

// Eval evaluates expression with the configured display format and writes
// the result to w. Failures come back as *expr.Error.
func Eval(app *App, opts EvalOptions, expression string, w io.Writer) error {
	expression, err := runner.SanitizeInput(strings.TrimSpace(expression))
	if err != nil {
		return err
	}
	if expression == "" {
		return errNoExpression
	}

	vars, err := parseAssignments(opts.Vars)
	if err != nil {
		return err
	}
	ctx := expr.Context{Vars: vars, Degrees: app.Config.Degrees()}
	switch opts.Angle {
	case "":
	case "deg":
		ctx.Degrees = true
	case "rad":
		ctx.Degrees = false
	default:
		return fmt.Errorf("invalid angle %q: want deg or rad", opts.Angle)
	}

	rpn, err := expr.Parse(expression)
	if err != nil {
		return err
	}
	value, err := expr.EvalRPN(rpn, ctx)
	if err != nil {
		return err
	}

	format, err := app.Config.DisplayFormat()
	if err != nil {
		return err
	}
	if opts.RPN {
		fmt.Fprintf(w, "rpn: %s\n", rpn)
	}
	_, err = fmt.Fprintln(w, format.Format(value))
	return err
}

// DescribeError renders an evaluation failure the way the display does,
// e.g. "Math Error: division by zero".
func DescribeError(err error) string {
	var exprErr *expr.Error
	if errors.As(err, &exprErr) {
		if base := exprErr.Unwrap(); base != nil {
			return fmt.Sprintf("%s: %v", exprErr.Kind.Label(), base)
		}
		return exprErr.Kind.Label()
	}
	return err.Error()
}

func parseAssignments(pairs []string) (domain.Variables, error) {
	values := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return domain.Variables{}, fmt.Errorf("invalid assignment %q: want NAME=VALUE", pair)
		}
		name = strings.TrimSpace(name)
		if _, known := domain.ParseVariable(name); !known {
			if _, known = domain.ParseVariable(strings.ToUpper(name)); !known {
				return domain.Variables{}, fmt.Errorf("unknown variable %q", name)
			}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return domain.Variables{}, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		values[name] = v
	}
	return domain.VariablesFromMap(values), nil
}
