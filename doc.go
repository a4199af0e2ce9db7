/*
Package abacus is an interactive scientific calculator engine: a key-driven input
session on top of a pure expression evaluator.

It is built for embedding. The engine never touches a screen or a keyboard: a host
feeds it one discrete key at a time and reads back a plain-text View (input line,
result, error label, indicators) to draw however it likes. The same engine backs the
terminal calculator, the HTTP API and the MCP server shipped in this module.

# Concept

A session is an owned value (domain.State). Every key produces a new State, so a
failed calculation can never corrupt the expression being typed or the stored
variables. Expressions are evaluated by package expr with a shunting-yard parser
and a bounded RPN evaluator.

# Key Features

  - Deterministic: the same state and key always produce the same next state.
  - Bounded: expression length and token counts are capped and rejected explicitly.
  - Hexagonal: sessions can be kept in memory or Redis behind pkg/ports contracts.
  - Observable: lifecycle hooks feed structured logs and Prometheus metrics.

# Usage

	eng, err := abacus.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state := eng.Start("session-123")
	state, err = eng.Type(ctx, state, "2+3*4=")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(eng.Render(state).Result) // 14

For one-shot calculations without a session use Evaluate:

	v, err := eng.Evaluate("sqrt(2)^2", domain.Variables{})
*/
package abacus
