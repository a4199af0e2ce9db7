/*
Package runner drives a calculator session from a stream of keys.

A Runner pulls one key at a time from a KeySource, applies it to the session
state through the engine, optionally persists the state, and hands the
resulting display to a Renderer. It is the glue between the pure state
machine and the outside world.

# Key Components

  - KeySource: where keys come from. LineSource reads key names or typed
    expressions per line, JSONSource reads NDJSON, KeypadSource decodes the
    binary keypad protocol (uint32 little-endian codes).
  - Renderer: where displays go. TextRenderer prints a panel per key,
    JSONRenderer emits view diffs as JSON lines.

# Usage

	r := runner.NewRunner(engine,
		runner.WithSource(runner.NewLineSource(os.Stdin)),
		runner.WithRenderer(runner.NewTextRenderer(os.Stdout)),
	)

	state, err := r.Run(ctx)
*/
package runner
