package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the abacus ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"        _                          ", "#34d399"},
		{"   __ _| |__   __ _  ___ _   _ ___ ", "#2dd4bf"},
		{"  / _` | '_ \\ / _` |/ __| | | / __|", "#22d3ee"},
		{" | (_| | |_) | (_| | (__| |_| \\__ \\", "#38bdf8"},
		{"  \\__,_|_.__/ \\__,_|\\___|\\__,_|___/", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
