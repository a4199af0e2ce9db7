package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/pkg/domain"
)

func TestPanel_Ascii(t *testing.T) {
	panel := NewPanel(termenv.Ascii)

	out := panel(domain.View{
		Input:      "1+2",
		Result:     "3",
		Status:     domain.StatusComputation,
		Indicators: []string{"D", "FIX"},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "| D FIX               COMP |", lines[1])
	assert.Equal(t, "| 1+2                      |", lines[2])
	assert.Equal(t, "|                        3 |", lines[3])
}

func TestPanel_ErrorAndLongInput(t *testing.T) {
	panel := NewPanel(termenv.Ascii)

	out := panel(domain.View{
		Input:  strings.Repeat("9", 30),
		Error:  "Math Error",
		Status: domain.StatusComputation,
	})
	assert.Contains(t, out, "Math Error |")
	assert.Contains(t, out, "…"+strings.Repeat("9", panelWidth-1))
}

func TestKeyReference(t *testing.T) {
	md := KeyReference()
	assert.Contains(t, md, "| SIN | 19 | `sin(` | `asin(` | `sinh(` |")
	assert.Contains(t, md, "| EQUAL | 15 | `evaluate` |")

	render := newRenderer(glamour.WithStandardStyle("notty"))
	out, err := render(md)
	require.NoError(t, err)
	assert.Contains(t, out, "Abacus keys")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "__ _| |__")
}
