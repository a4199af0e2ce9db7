package runner

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/abacus/pkg/domain"
)

// KeySource yields keys one at a time. It returns io.EOF when exhausted.
// An error wrapping domain.ErrUnknownKey reports a single bad key; the
// source stays usable.
type KeySource interface {
	Next(ctx context.Context) (domain.Key, error)
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func(ctx context.Context) (domain.Key, error)

func (f KeySourceFunc) Next(ctx context.Context) (domain.Key, error) {
	return f(ctx)
}

// Keys returns a source that replays a fixed sequence.
func Keys(keys ...domain.Key) KeySource {
	i := 0
	return KeySourceFunc(func(ctx context.Context) (domain.Key, error) {
		if err := ctx.Err(); err != nil {
			return domain.KeyNone, err
		}
		if i >= len(keys) {
			return domain.KeyNone, io.EOF
		}
		k := keys[i]
		i++
		return k, nil
	})
}

type lineResult struct {
	text string
	err  error
}

// linePump reads lines in the background so that Next can honor cancellation
// while a terminal read is blocked.
type linePump struct {
	reader *bufio.Reader
	lines  chan lineResult
	once   sync.Once
}

func newLinePump(r io.Reader) *linePump {
	return &linePump{reader: bufio.NewReader(r)}
}

func (p *linePump) start() {
	p.once.Do(func() {
		p.lines = make(chan lineResult)
		go func() {
			defer close(p.lines)
			for {
				text, err := p.reader.ReadString('\n')
				if text != "" {
					p.lines <- lineResult{text: text}
				}
				if err != nil {
					if err != io.EOF {
						p.lines <- lineResult{err: err}
					}
					return
				}
			}
		}()
	})
}

func (p *linePump) next(ctx context.Context) (string, error) {
	p.start()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

// LineSource reads whitespace separated tokens, one line at a time. A token is
// a key name ("SIN", "AC", "+", "7") or, failing that, an expression that is
// typed key by key ("12+3="). Blank lines and lines starting with '#' are
// skipped; "exit" or "quit" ends the stream.
type LineSource struct {
	pump    *linePump
	pending []domain.Key
}

// NewLineSource creates a text source.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{pump: newLinePump(r)}
}

func (s *LineSource) Next(ctx context.Context) (domain.Key, error) {
	for len(s.pending) == 0 {
		line, err := s.pump.next(ctx)
		if err != nil {
			return domain.KeyNone, err
		}

		clean, err := SanitizeInput(strings.TrimSpace(line))
		if err != nil {
			return domain.KeyNone, fmt.Errorf("%w: %v", domain.ErrUnknownKey, err)
		}
		if clean == "" || strings.HasPrefix(clean, "#") {
			continue
		}
		if clean == "exit" || clean == "quit" {
			return domain.KeyNone, io.EOF
		}

		keys, err := tokensToKeys(strings.Fields(clean))
		if err != nil {
			return domain.KeyNone, err
		}
		s.pending = keys
	}

	k := s.pending[0]
	s.pending = s.pending[1:]
	return k, nil
}

func tokensToKeys(tokens []string) ([]domain.Key, error) {
	var keys []domain.Key
	for _, tok := range tokens {
		// Numbers are typed digit by digit, never read as keypad codes.
		if k, err := domain.ParseKey(tok); err == nil && !isNumber(tok) {
			keys = append(keys, k)
			continue
		}
		typed, err := domain.KeysForExpression(tok)
		if err != nil {
			return nil, err
		}
		keys = append(keys, typed...)
	}
	return keys, nil
}

func isNumber(tok string) bool {
	return strings.Trim(tok, "0123456789") == ""
}

// jsonKey is one NDJSON record: a bare key name or code, or an object.
type jsonKey struct {
	Key  *domain.Key `json:"key,omitempty"`
	Code *uint32     `json:"code,omitempty"`
	Text string      `json:"text,omitempty"`
}

// JSONSource reads newline delimited JSON. Each line is one of
//
//	"SIN"               a key name
//	27                  a keypad code
//	{"key": "PLUS"}     a key name
//	{"code": 11}        a keypad code
//	{"text": "2+2="}    an expression typed key by key
type JSONSource struct {
	pump    *linePump
	pending []domain.Key
}

// NewJSONSource creates an NDJSON source.
func NewJSONSource(r io.Reader) *JSONSource {
	return &JSONSource{pump: newLinePump(r)}
}

func (s *JSONSource) Next(ctx context.Context) (domain.Key, error) {
	for len(s.pending) == 0 {
		line, err := s.pump.next(ctx)
		if err != nil {
			return domain.KeyNone, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		keys, err := decodeJSONKeys([]byte(line))
		if err != nil {
			return domain.KeyNone, err
		}
		s.pending = keys
	}

	k := s.pending[0]
	s.pending = s.pending[1:]
	return k, nil
}

func decodeJSONKeys(data []byte) ([]domain.Key, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		k, err := domain.ParseKey(name)
		if err != nil {
			return nil, err
		}
		return []domain.Key{k}, nil
	}

	var code uint32
	if err := json.Unmarshal(data, &code); err == nil {
		return []domain.Key{domain.Key(code)}, nil
	}

	var rec jsonKey
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: invalid json record: %v", domain.ErrUnknownKey, err)
	}
	switch {
	case rec.Key != nil:
		return []domain.Key{*rec.Key}, nil
	case rec.Code != nil:
		return []domain.Key{domain.Key(*rec.Code)}, nil
	case rec.Text != "":
		return domain.KeysForExpression(rec.Text)
	}
	return nil, fmt.Errorf("%w: empty json record", domain.ErrUnknownKey)
}

// KeypadSource decodes the binary keypad protocol: each key is a uint32 in
// little-endian byte order, as written by the keypad simulator to its FIFO.
type KeypadSource struct {
	r io.Reader
}

// NewKeypadSource creates a binary keypad source.
func NewKeypadSource(r io.Reader) *KeypadSource {
	return &KeypadSource{r: r}
}

func (s *KeypadSource) Next(ctx context.Context) (domain.Key, error) {
	if err := ctx.Err(); err != nil {
		return domain.KeyNone, err
	}

	var code uint32
	if err := binary.Read(s.r, binary.LittleEndian, &code); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return domain.KeyNone, io.EOF
		}
		return domain.KeyNone, err
	}
	return domain.Key(code), nil
}
