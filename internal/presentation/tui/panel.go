package tui

import (
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/abacus/pkg/domain"
)

// panelWidth is the width of the LCD line, in runes.
const panelWidth = 24

// NewPanel returns a view formatter that draws a small LCD style display:
// indicators on top, the input line, then the right-aligned result.
func NewPanel(profile termenv.Profile) func(domain.View) string {
	frame := func(s string) string {
		return profile.String(s).Foreground(profile.Color("#64748b")).String()
	}
	indicator := func(s string) string {
		return profile.String(s).Foreground(profile.Color("#fbbf24")).Faint().String()
	}
	result := func(s string) string {
		return profile.String(s).Foreground(profile.Color("#34d399")).Bold().String()
	}
	failure := func(s string) string {
		return profile.String(s).Foreground(profile.Color("#f87171")).Bold().String()
	}

	return func(v domain.View) string {
		var b strings.Builder
		border := frame("+" + strings.Repeat("-", panelWidth+2) + "+")

		b.WriteString(border + "\n")
		b.WriteString(row(frame, indicator(pad(strings.Join(v.Indicators, " "), v.Status))) + "\n")
		b.WriteString(row(frame, padRight(tail(v.Input, panelWidth), panelWidth)) + "\n")

		switch {
		case v.Error != "":
			b.WriteString(row(frame, failure(padLeft(v.Error, panelWidth))) + "\n")
		default:
			b.WriteString(row(frame, result(padLeft(v.Result, panelWidth))) + "\n")
		}
		b.WriteString(border)
		return b.String()
	}
}

func row(frame func(string) string, content string) string {
	return frame("| ") + content + frame(" |")
}

// pad spreads left and right text over the panel width.
func pad(left, right string) string {
	gap := panelWidth - runeLen(left) - runeLen(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func padLeft(s string, width int) string {
	if n := runeLen(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := runeLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// tail keeps the end of s so the cursor side stays visible.
func tail(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "…" + string(r[len(r)-width+1:])
}

func runeLen(s string) int {
	return len([]rune(s))
}
