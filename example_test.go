package abacus_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
)

// ExampleEngine_Type drives a session with the keys that spell an expression.
func ExampleEngine_Type() {
	eng, err := abacus.New()
	if err != nil {
		log.Fatal(err)
	}

	// 1. Start a session and type the keys
	ctx := context.Background()
	state := eng.Start("example")
	state, err = eng.Type(ctx, state, "2+3*4=")
	if err != nil {
		log.Fatal(err)
	}

	// 2. Read the display
	view := eng.Render(state)
	fmt.Println(view.Input, "=", view.Result)

	// 3. An operator continues from the previous result
	state, _ = eng.Press(ctx, state, domain.KeyDivide)
	fmt.Println(eng.Render(state).Input)

	// Output:
	// 2+3*4 = 14
	// 14/
}

// ExampleEngine_Evaluate computes expressions without a session.
func ExampleEngine_Evaluate() {
	eng, err := abacus.New()
	if err != nil {
		log.Fatal(err)
	}

	v, _ := eng.Evaluate("2^3^2", domain.Variables{})
	fmt.Println(v)

	_, err = eng.Evaluate("5/0", domain.Variables{})
	fmt.Println(errors.Is(err, expr.ErrDivisionByZero), expr.KindOf(err).Label())

	// Output:
	// 512
	// true Math Error
}
