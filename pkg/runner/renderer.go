package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// Renderer presents the display after each key.
type Renderer interface {
	Render(ctx context.Context, sessionID string, view domain.View) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, sessionID string, view domain.View) error

func (f RendererFunc) Render(ctx context.Context, sessionID string, view domain.View) error {
	return f(ctx, sessionID, view)
}

// ViewFormatter turns a view into printable text.
type ViewFormatter func(domain.View) string

// TextRenderer prints one panel per key.
type TextRenderer struct {
	w      io.Writer
	format ViewFormatter
}

// TextRendererOption configures a TextRenderer.
type TextRendererOption func(*TextRenderer)

// WithViewFormatter replaces the plain two-line panel, e.g. with a styled one.
func WithViewFormatter(f ViewFormatter) TextRendererOption {
	return func(r *TextRenderer) {
		r.format = f
	}
}

// NewTextRenderer creates a text renderer.
func NewTextRenderer(w io.Writer, opts ...TextRendererOption) *TextRenderer {
	r := &TextRenderer{w: w, format: PlainView}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TextRenderer) Render(ctx context.Context, sessionID string, view domain.View) error {
	_, err := fmt.Fprintln(r.w, strings.TrimRight(r.format(view), "\n"))
	return err
}

// PlainView renders the indicator line, the input line and the result line.
//
//	[D FIX] COMP
//	1+2
//	= 3.00
func PlainView(v domain.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", strings.Join(v.Indicators, " "), v.Status)
	b.WriteString(v.Input)
	b.WriteByte('\n')
	switch {
	case v.Error != "":
		b.WriteString("! " + v.Error)
	case v.Result != "":
		b.WriteString("= " + v.Result)
	}
	return b.String()
}

// JSONRenderer writes one JSON line per key. By default only the fields that
// changed since the previous line are written (a domain.ViewDiff); keys that
// change nothing produce no output.
type JSONRenderer struct {
	enc  *json.Encoder
	full bool
	last *domain.View
}

// NewJSONRenderer creates a JSON renderer. With full set every line carries
// the whole view.
func NewJSONRenderer(w io.Writer, full bool) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w), full: full}
}

func (r *JSONRenderer) Render(ctx context.Context, sessionID string, view domain.View) error {
	if r.full {
		return r.enc.Encode(struct {
			SessionID string `json:"session_id,omitempty"`
			domain.View
		}{sessionID, view})
	}

	diff := domain.Diff(sessionID, r.last, &view)
	r.last = &view
	if diff == nil {
		return nil
	}
	return r.enc.Encode(diff)
}
