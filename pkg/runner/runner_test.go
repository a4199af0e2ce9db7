package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/runner"
)

func newEngine(t *testing.T) *abacus.Engine {
	t.Helper()
	eng, err := abacus.New()
	require.NoError(t, err)
	return eng
}

func TestRunner_TextFlow(t *testing.T) {
	var out bytes.Buffer
	r := runner.NewRunner(newEngine(t),
		runner.WithSource(runner.NewLineSource(strings.NewReader("2 + 3\n=\n"))),
		runner.WithRenderer(runner.NewTextRenderer(&out)),
	)

	state, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ModeShowingResult, state.Mode)
	assert.Equal(t, "5", state.Result)

	output := out.String()
	assert.Contains(t, output, "[D] COMP\n0\n")
	assert.Contains(t, output, "2+3\n= 5")
}

func TestRunner_SkipsInvalidKeys(t *testing.T) {
	r := runner.NewRunner(newEngine(t),
		runner.WithSource(runner.Keys(domain.Key4, domain.Key(500), domain.KeyEqual)),
		runner.WithRenderer(runner.NewTextRenderer(&bytes.Buffer{})),
	)

	state, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4", state.Result)
}

func TestRunner_JSONDiffs(t *testing.T) {
	var out bytes.Buffer
	r := runner.NewRunner(newEngine(t),
		runner.WithSessionID("j"),
		runner.WithSource(runner.Keys(domain.Key1, domain.KeyNone, domain.KeyDivide, domain.Key0, domain.KeyEqual)),
		runner.WithRenderer(runner.NewJSONRenderer(&out, false)),
	)

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// Initial view, then one diff per key that changed something (NONE is silent).
	require.Len(t, lines, 5)

	var last domain.ViewDiff
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	require.NotNil(t, last.Error)
	assert.Equal(t, "Math Error", *last.Error)
	assert.Equal(t, "j", last.SessionID)
}

func TestRunner_PersistsAndResumes(t *testing.T) {
	store := memory.NewStore()
	eng := newEngine(t)

	first := runner.NewRunner(eng,
		runner.WithStore(store),
		runner.WithSessionID("calc"),
		runner.WithSource(runner.Keys(domain.Key6, domain.KeyMultiply, domain.Key7, domain.KeyEqual)),
		runner.WithRenderer(runner.NewJSONRenderer(&bytes.Buffer{}, true)),
	)
	_, err := first.Run(context.Background())
	require.NoError(t, err)

	second := runner.NewRunner(eng,
		runner.WithStore(store),
		runner.WithSessionID("calc"),
		runner.WithSource(runner.Keys(domain.KeyPlus, domain.Key1, domain.KeyEqual)),
		runner.WithRenderer(runner.NewJSONRenderer(&bytes.Buffer{}, true)),
	)
	state, err := second.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "43", state.Result)

	saved, err := store.Load(context.Background(), "calc")
	require.NoError(t, err)
	assert.Equal(t, 43.0, saved.Vars.Ans)
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runner.NewRunner(newEngine(t),
		runner.WithSource(runner.Keys(domain.Key1)),
		runner.WithRenderer(runner.NewTextRenderer(&bytes.Buffer{})),
	)
	state, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, state)
}

func TestPlainView(t *testing.T) {
	view := domain.View{
		Input:      "1/0",
		Error:      "Math Error",
		Status:     domain.StatusComputation,
		Indicators: []string{"R", "S"},
	}
	assert.Equal(t, "[R S] COMP\n1/0\n! Math Error", runner.PlainView(view))
}
