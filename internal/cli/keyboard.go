package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/aretw0/abacus/pkg/domain"
)

// ErrNotTerminal is returned when raw keyboard input is requested on a pipe or file.
var ErrNotTerminal = errors.New("stdin is not a terminal")

const (
	keyEsc   = 0x1b
	keyCtrlC = 0x03
	keyCtrlD = 0x04

	// escapeWait is how long a lone ESC waits for the rest of a sequence.
	escapeWait = 30 * time.Millisecond
)

// keyboard maps single keystrokes to keypad keys.
var keyboard = map[byte]domain.Key{
	'+': domain.KeyPlus, '-': domain.KeyMinus, '*': domain.KeyMultiply, '/': domain.KeyDivide,
	'.': domain.KeyDot, '(': domain.KeyParenLeft, ')': domain.KeyParenRight,
	'^': domain.KeyPower, '!': domain.KeyFactorial, '%': domain.KeyPercent,
	'=': domain.KeyEqual, '\r': domain.KeyEqual, '\n': domain.KeyEqual,
	0x7f: domain.KeyBackspace, 0x08: domain.KeyBackspace,
	keyEsc: domain.KeyClear,

	's': domain.KeySin, 'c': domain.KeyCos, 't': domain.KeyTan,
	'l': domain.KeyLn, 'g': domain.KeyLog, 'r': domain.KeySqrt,
	'p': domain.KeyPi, 'e': domain.KeyE, 'a': domain.KeyAns,
	'x': domain.KeyVarX, 'y': domain.KeyVarY,

	'S': domain.KeyShift, 'A': domain.KeyAlpha, 'M': domain.KeyMode,
	'D': domain.KeyDRG, 'E': domain.KeyExp, 'N': domain.KeyEng,
	'H': domain.KeyHyp, 'T': domain.KeySTO, 'R': domain.KeyRCL,
	'O': domain.KeyOnAC,
}

// KeyForByte resolves one keystroke. quit is set for q, Ctrl+C and Ctrl+D.
func KeyForByte(b byte) (key domain.Key, quit, ok bool) {
	switch b {
	case 'q', keyCtrlC, keyCtrlD:
		return domain.KeyNone, true, true
	}
	if b >= '0' && b <= '9' {
		return domain.Key0 + domain.Key(b-'0'), false, true
	}
	key, ok = keyboard[b]
	return key, false, ok
}

type byteResult struct {
	b   byte
	err error
}

// KeyboardSource reads single keystrokes, one key per byte, from a terminal
// put into raw mode. Escape sequences (arrows, function keys) are skipped,
// except Delete which maps to BACKSPACE.
type KeyboardSource struct {
	in      io.Reader
	restore func() error

	once  sync.Once
	bytes chan byteResult
}

// NewKeyboardSource switches f to raw mode. Close restores the terminal.
func NewKeyboardSource(f *os.File) (*KeyboardSource, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	src := newKeyboardSource(f)
	src.restore = func() error { return term.Restore(fd, state) }
	return src, nil
}

func newKeyboardSource(r io.Reader) *KeyboardSource {
	return &KeyboardSource{
		in:    r,
		bytes: make(chan byteResult, 16),
	}
}

func (s *KeyboardSource) pump() {
	go func() {
		defer close(s.bytes)
		buf := make([]byte, 1)
		for {
			n, err := s.in.Read(buf)
			if n == 1 {
				s.bytes <- byteResult{b: buf[0]}
			}
			if err != nil {
				s.bytes <- byteResult{err: err}
				return
			}
		}
	}()
}

func (s *KeyboardSource) read(ctx context.Context) (byte, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res, ok := <-s.bytes:
		if !ok {
			return 0, io.EOF
		}
		return res.b, res.err
	}
}

// Next implements runner.KeySource.
func (s *KeyboardSource) Next(ctx context.Context) (domain.Key, error) {
	s.once.Do(s.pump)
	for {
		b, err := s.read(ctx)
		if err != nil {
			return domain.KeyNone, err
		}
		if b == keyEsc {
			if key, ok := s.escape(ctx); ok {
				return key, nil
			}
			continue
		}
		key, quit, ok := KeyForByte(b)
		if quit {
			return domain.KeyNone, io.EOF
		}
		if ok {
			return key, nil
		}
	}
}

// escape resolves what follows an ESC byte. A lone ESC is CLEAR.
func (s *KeyboardSource) escape(ctx context.Context) (domain.Key, bool) {
	wait, cancel := context.WithTimeout(ctx, escapeWait)
	defer cancel()

	b, err := s.read(wait)
	if err != nil {
		return domain.KeyClear, true
	}
	if b != '[' && b != 'O' {
		return domain.KeyNone, false
	}
	// CSI: parameters then a final byte in 0x40..0x7e.
	var params []byte
	for {
		b, err = s.read(wait)
		if err != nil {
			return domain.KeyNone, false
		}
		if b >= 0x40 && b <= 0x7e {
			break
		}
		params = append(params, b)
	}
	if b == '~' && string(params) == "3" {
		return domain.KeyBackspace, true
	}
	return domain.KeyNone, false
}

// Close restores the terminal mode.
func (s *KeyboardSource) Close() error {
	if s.restore == nil {
		return nil
	}
	return s.restore()
}
