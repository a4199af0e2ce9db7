package runner

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/pkg/domain"
)

func drain(t *testing.T, src KeySource) ([]domain.Key, []error) {
	t.Helper()
	var keys []domain.Key
	var errs []error
	for i := 0; i < 1000; i++ {
		k, err := src.Next(context.Background())
		if err == io.EOF {
			return keys, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		keys = append(keys, k)
	}
	t.Fatal("source did not terminate")
	return nil, nil
}

func TestLineSource(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"1 PLUS 2",
		"=",
		"SHIFT sin",
		"12*3=",
		"exit",
		"9",
	}, "\n")

	keys, errs := drain(t, NewLineSource(strings.NewReader(input)))
	assert.Empty(t, errs)
	assert.Equal(t, []domain.Key{
		domain.Key1, domain.KeyPlus, domain.Key2,
		domain.KeyEqual,
		domain.KeyShift, domain.KeySin,
		domain.Key1, domain.Key2, domain.KeyMultiply, domain.Key3, domain.KeyEqual,
	}, keys)
}

func TestLineSource_UnknownToken(t *testing.T) {
	keys, errs := drain(t, NewLineSource(strings.NewReader("1 ??? \n2\n")))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrUnknownKey)
	assert.Equal(t, []domain.Key{domain.Key2}, keys)
}

func TestLineSource_Cancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewLineSource(pr).Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestJSONSource(t *testing.T) {
	input := strings.Join([]string{
		`"SIN"`,
		`9`,
		`{"key": "PAREN_RIGHT"}`,
		`{"code": 15}`,
		`{"text": "1+1"}`,
		`{}`,
		`"NOPE"`,
	}, "\n")

	keys, errs := drain(t, NewJSONSource(strings.NewReader(input)))
	assert.Equal(t, []domain.Key{
		domain.KeySin, domain.Key8, domain.KeyParenRight, domain.KeyEqual,
		domain.Key1, domain.KeyPlus, domain.Key1,
	}, keys)
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrUnknownKey)
	}
}

func TestKeypadSource(t *testing.T) {
	var buf bytes.Buffer
	for _, code := range []uint32{1, 11, 2, 15, 99} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, code))
	}
	buf.Write([]byte{0x01, 0x00}) // truncated trailer

	keys, errs := drain(t, NewKeypadSource(&buf))
	assert.Empty(t, errs)
	assert.Equal(t, []domain.Key{domain.Key0, domain.KeyPlus, domain.Key1, domain.KeyEqual, domain.Key(99)}, keys)
}

func TestSanitizeInput(t *testing.T) {
	clean, err := SanitizeInput("1\x1b[31m+\x002")
	require.NoError(t, err)
	assert.Equal(t, "1[31m+2", clean)

	_, err = SanitizeInput(strings.Repeat("a", DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = SanitizeInput("\xff")
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	t.Setenv(EnvMaxInputSize, "4")
	_, err = SanitizeInput("12345")
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestLineSource_NumbersAreTyped(t *testing.T) {
	keys, errs := drain(t, NewLineSource(strings.NewReader("12 + 30\n")))
	assert.Empty(t, errs)
	assert.Equal(t, []domain.Key{domain.Key1, domain.Key2, domain.KeyPlus, domain.Key3, domain.Key0}, keys)
}
