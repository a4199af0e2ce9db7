package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/abacus/internal/presentation/tui"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/runner"
)

// RunOptions configures an interactive or scripted session.
type RunOptions struct {
	SessionID string
	Keypad    string // path of a binary keypad stream (device, FIFO or file)
	JSON      bool   // NDJSON keys in, view diffs out
	Full      bool   // with JSON, write full views instead of diffs
	Raw       bool   // read single keystrokes from the terminal
	Quiet     bool
}

// IO is the process streams a run reads from and writes to.
type IO struct {
	In  *os.File
	Out io.Writer
	Err io.Writer
}

// Run drives one calculator session until input ends or ctx is cancelled.
func Run(ctx context.Context, app *App, opts RunOptions, stdio IO) error {
	source, closeSource, err := newSource(opts, stdio.In)
	if err != nil {
		return err
	}
	defer closeSource()

	out := stdio.Out
	if opts.Raw {
		out = crlfWriter{w: out}
	}

	interactive := !opts.JSON && !opts.Quiet
	if interactive {
		tui.PrintBanner(out)
	}

	r := runner.NewRunner(app.Engine,
		runner.WithSource(source),
		runner.WithRenderer(newRenderer(opts, out)),
		runner.WithStore(app.Store),
		runner.WithSessionID(opts.SessionID),
		runner.WithLogger(app.Logger),
	)

	state, err := r.Run(ctx)
	if err != nil && !isInterrupted(err) {
		return err
	}
	if state != nil {
		app.Logger.Debug("Session finished", "session_id", opts.SessionID, "mode", state.Mode, "history", len(state.History))
	}
	if interactive {
		var sig os.Signal
		if sc, ok := ctx.(*SignalContext); ok {
			sig = sc.Signal()
		}
		logCompletion(out, sig, false)
	}
	return handleExecutionError(err)
}

func newSource(opts RunOptions, in *os.File) (runner.KeySource, func(), error) {
	nop := func() {}
	switch {
	case opts.Keypad != "":
		f, err := os.Open(opts.Keypad)
		if err != nil {
			return nil, nop, fmt.Errorf("failed to open keypad: %w", err)
		}
		return runner.NewKeypadSource(f), func() { _ = f.Close() }, nil
	case opts.JSON:
		return runner.NewJSONSource(in), nop, nil
	case opts.Raw:
		src, err := NewKeyboardSource(in)
		if err != nil {
			return nil, nop, err
		}
		return src, func() { _ = src.Close() }, nil
	}
	return runner.NewLineSource(in), nop, nil
}

func newRenderer(opts RunOptions, w io.Writer) runner.Renderer {
	if opts.JSON {
		return runner.NewJSONRenderer(w, opts.Full)
	}
	if opts.Quiet {
		return runner.NewTextRenderer(w)
	}
	output := termenv.NewOutput(w)
	panel := tui.NewPanel(output.Profile)
	if !opts.Raw {
		return runner.NewTextRenderer(w, runner.WithViewFormatter(panel))
	}
	// Raw mode redraws the panel in place.
	return runner.RendererFunc(func(ctx context.Context, sessionID string, view domain.View) error {
		output.ClearScreen()
		_, err := fmt.Fprintln(w, panel(view))
		return err
	})
}

// crlfWriter restores the carriage returns a raw terminal no longer adds.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	s := strings.ReplaceAll(string(p), "\r\n", "\n")
	if _, err := io.WriteString(c.w, strings.ReplaceAll(s, "\n", "\r\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}
