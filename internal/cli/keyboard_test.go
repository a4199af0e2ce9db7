package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/pkg/domain"
)

func TestKeyForByte(t *testing.T) {
	tests := []struct {
		in   byte
		key  domain.Key
		quit bool
		ok   bool
	}{
		{'7', domain.Key7, false, true},
		{'+', domain.KeyPlus, false, true},
		{'\r', domain.KeyEqual, false, true},
		{0x7f, domain.KeyBackspace, false, true},
		{'s', domain.KeySin, false, true},
		{'S', domain.KeyShift, false, true},
		{'q', domain.KeyNone, true, true},
		{0x03, domain.KeyNone, true, true},
		{'#', domain.KeyNone, false, false},
	}
	for _, tt := range tests {
		key, quit, ok := KeyForByte(tt.in)
		assert.Equal(t, tt.key, key, "byte %q", tt.in)
		assert.Equal(t, tt.quit, quit, "byte %q", tt.in)
		assert.Equal(t, tt.ok, ok, "byte %q", tt.in)
	}
}

func collect(t *testing.T, input string) []domain.Key {
	t.Helper()
	src := newKeyboardSource(strings.NewReader(input))
	var keys []domain.Key
	for {
		k, err := src.Next(context.Background())
		if err == io.EOF {
			return keys
		}
		require.NoError(t, err)
		keys = append(keys, k)
	}
}

func TestKeyboardSource(t *testing.T) {
	t.Run("Keystrokes", func(t *testing.T) {
		assert.Equal(t,
			[]domain.Key{domain.Key1, domain.KeyPlus, domain.Key2, domain.KeyEqual},
			collect(t, "1+2\r"))
	})

	t.Run("Unmapped bytes are skipped", func(t *testing.T) {
		assert.Equal(t, []domain.Key{domain.Key4}, collect(t, "#4"))
	})

	t.Run("Quit ends the stream", func(t *testing.T) {
		assert.Equal(t, []domain.Key{domain.Key9}, collect(t, "9q8"))
	})

	t.Run("Delete sequence", func(t *testing.T) {
		assert.Equal(t, []domain.Key{domain.Key5, domain.KeyBackspace}, collect(t, "5\x1b[3~"))
	})

	t.Run("Arrow keys are ignored", func(t *testing.T) {
		assert.Equal(t, []domain.Key{domain.Key1}, collect(t, "\x1b[A1"))
	})

	t.Run("Lone escape clears", func(t *testing.T) {
		assert.Equal(t, []domain.Key{domain.Key3, domain.KeyClear}, collect(t, "3\x1b"))
	})

	t.Run("Context cancellation", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		src := newKeyboardSource(pr)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.Next(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestKeyboardSource_CloseWithoutTerminal(t *testing.T) {
	assert.NoError(t, newKeyboardSource(strings.NewReader("")).Close())
}
