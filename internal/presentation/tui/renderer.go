package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/abacus/internal/runtime"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() func(string) (string, error) {
	return newRenderer(glamour.WithAutoStyle())
}

func newRenderer(style glamour.TermRendererOption) func(string) (string, error) {
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return r.Render
}

// KeyReference builds the markdown key reference printed by `abacus keys`.
func KeyReference() string {
	var b strings.Builder
	b.WriteString("# Abacus keys\n\n")
	b.WriteString("Press `SHIFT` or `ALPHA` before a key to use its second or third function.\n\n")
	b.WriteString("| Key | Code | Plain | Shift | Alpha |\n")
	b.WriteString("|---|---:|---|---|---|\n")
	for _, l := range runtime.Legends() {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n",
			l.Key, uint32(l.Key), cell(l.Plain), cell(l.Shift), cell(l.Alpha))
	}
	b.WriteString("\nText sources also accept `+ - * / = . ( ) ^ !`, `AC`, `DEL` and expressions such as `sin(30)=`.\n")
	return b.String()
}

func cell(s string) string {
	if s == "" {
		return ""
	}
	return "`" + strings.ReplaceAll(s, "|", "\\|") + "`"
}
