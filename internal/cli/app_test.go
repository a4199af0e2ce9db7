package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/adapters/file"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
)

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	app, err := NewApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestNewApp_MemoryStore(t *testing.T) {
	app := newTestApp(t, config.Default())
	assert.IsType(t, &memory.Store{}, app.Store)
	assert.True(t, app.Engine.Degrees())
}

func TestNewApp_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()

	app := newTestApp(t, cfg)
	assert.IsType(t, &redis.Store{}, app.Store)

	in, err := os.Open(writeTemp(t, "keys.txt", []byte("6 * 7 =\n")))
	require.NoError(t, err)
	defer in.Close()

	err = Run(context.Background(), app, RunOptions{SessionID: "r1", Quiet: true}, IO{In: in, Out: io.Discard, Err: io.Discard})
	require.NoError(t, err)
	assert.True(t, mr.Exists(cfg.Redis.Prefix+"r1"))

	state, err := app.Sessions.Load(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "42", state.Result)
}

func TestNewApp_EncryptedFileStore(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SessionDir = dir
	cfg.Encryption.Key = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	app := newTestApp(t, cfg)

	in, err := os.Open(writeTemp(t, "keys.txt", []byte("6 * 7 =\n")))
	require.NoError(t, err)
	defer in.Close()
	require.NoError(t, Run(context.Background(), app, RunOptions{SessionID: "f1", Quiet: true}, IO{In: in, Out: io.Discard, Err: io.Discard}))

	raw, err := file.New(dir).Load(context.Background(), "f1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Result)

	state, err := app.Store.Load(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "42", state.Result)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Addr = "127.0.0.1:1"
	_, err := NewApp(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "failed to reach redis")
}

func TestNewApp_RadiansAndFixed(t *testing.T) {
	cfg := config.Default()
	cfg.Angle = "rad"
	cfg.Format = "fixed:3"
	app := newTestApp(t, cfg)

	state := app.Engine.Start("")
	assert.False(t, state.Degrees)
	assert.Equal(t, domain.FormatFixed, state.Format.Mode)
	assert.Equal(t, 3, state.Format.Places)
}

func TestRun_LineInput(t *testing.T) {
	app := newTestApp(t, config.Default())
	in, err := os.Open(writeTemp(t, "keys.txt", []byte("# sum\n1 + 2\n=\n")))
	require.NoError(t, err)
	defer in.Close()

	var out bytes.Buffer
	err = Run(context.Background(), app, RunOptions{SessionID: "s1", Quiet: true}, IO{In: in, Out: &out, Err: io.Discard})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1+2\n= 3")

	state, err := app.Store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, state.Vars.Ans)
}

func TestRun_Keypad(t *testing.T) {
	app := newTestApp(t, config.Default())

	var frames bytes.Buffer
	for _, k := range []domain.Key{domain.Key9, domain.KeyDivide, domain.Key0, domain.KeyEqual} {
		require.NoError(t, binary.Write(&frames, binary.LittleEndian, uint32(k)))
	}
	path := writeTemp(t, "keypad.bin", frames.Bytes())

	var out bytes.Buffer
	err := Run(context.Background(), app, RunOptions{Keypad: path, JSON: true, Full: true}, IO{Out: &out, Err: io.Discard})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"error":"Math Error"`)
}

func TestRun_MissingKeypad(t *testing.T) {
	app := newTestApp(t, config.Default())
	err := Run(context.Background(), app, RunOptions{Keypad: filepath.Join(t.TempDir(), "nope")}, IO{Out: io.Discard, Err: io.Discard})
	assert.ErrorContains(t, err, "failed to open keypad")
}

func TestRun_Banner(t *testing.T) {
	app := newTestApp(t, config.Default())
	in, err := os.Open(writeTemp(t, "keys.txt", []byte("exit\n")))
	require.NoError(t, err)
	defer in.Close()

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), app, RunOptions{}, IO{In: in, Out: &out, Err: io.Discard}))
	assert.Contains(t, out.String(), "COMP")
	assert.Contains(t, out.String(), ">>> Bye!")
}

func TestRun_RawRequiresTerminal(t *testing.T) {
	app := newTestApp(t, config.Default())
	in, err := os.Open(writeTemp(t, "keys.txt", nil))
	require.NoError(t, err)
	defer in.Close()

	err = Run(context.Background(), app, RunOptions{Raw: true}, IO{In: in, Out: io.Discard, Err: io.Discard})
	assert.ErrorIs(t, err, ErrNotTerminal)
}

func TestEval(t *testing.T) {
	app := newTestApp(t, config.Default())

	tests := []struct {
		name string
		expr string
		opts EvalOptions
		want string
	}{
		{"Precedence", "2+3*4", EvalOptions{}, "14\n"},
		{"Degrees", "sin(90)", EvalOptions{}, "1\n"},
		{"Radians", "cos(0)", EvalOptions{Angle: "rad"}, "1\n"},
		{"Variables", "X*2+Y", EvalOptions{Vars: []string{"X=4", "y=1"}}, "9\n"},
		{"RPN", "1+2", EvalOptions{RPN: true}, "3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, Eval(app, tt.opts, tt.expr, &out))
			assert.Contains(t, out.String(), tt.want)
			if tt.opts.RPN {
				assert.Contains(t, out.String(), "rpn: ")
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	app := newTestApp(t, config.Default())

	err := Eval(app, EvalOptions{}, "1/0", io.Discard)
	require.ErrorIs(t, err, expr.ErrDivisionByZero)
	assert.Equal(t, "Math Error: division by zero", DescribeError(err))

	err = Eval(app, EvalOptions{}, "(1+2", io.Discard)
	assert.ErrorIs(t, err, expr.ErrMismatchedParens)
	assert.Equal(t, "Syntax Error: mismatched parentheses", DescribeError(err))

	assert.Equal(t, "Error", DescribeError(&expr.Error{Kind: expr.KindNone, Pos: -1}))
	assert.Equal(t, "boom", DescribeError(errors.New("boom")))

	assert.ErrorIs(t, Eval(app, EvalOptions{}, "  ", io.Discard), errNoExpression)
	assert.ErrorContains(t, Eval(app, EvalOptions{Vars: []string{"Q=1"}}, "1", io.Discard), "unknown variable")
	assert.ErrorContains(t, Eval(app, EvalOptions{Vars: []string{"X"}}, "1", io.Discard), "NAME=VALUE")
	assert.ErrorContains(t, Eval(app, EvalOptions{Angle: "grad"}, "1", io.Discard), "invalid angle")
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.NoError(t, handleExecutionError(io.EOF))
	assert.Error(t, handleExecutionError(assert.AnError))
}
