package runtime

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/abacus/pkg/domain"
)

// insert joins text to the buffer according to its kind. Edits that would
// exceed the buffer capacity are rejected and leave the state untouched.
func (m *Machine) insert(ctx context.Context, s *domain.State, key domain.Key, t keyText) {
	buf := s.Buffer
	fresh := s.Fresh

	switch t.kind {
	case textOperand:
		if fresh {
			buf = "0"
		}
		switch {
		case buf == "0":
			buf = t.text
		case isDigitText(t.text) && currentNumber(buf) == "0":
			// Collapse a leading zero: "5+0" then "7" is "5+7".
			buf = buf[:len(buf)-1] + t.text
		default:
			buf += t.text
		}

	case textPoint:
		if fresh {
			buf = "0"
		}
		if strings.Contains(currentNumber(buf), ".") {
			m.logger.Debug("second decimal point ignored", "session_id", s.SessionID)
			return
		}
		buf += t.text

	case textOperator:
		op := t.text
		last, _ := utf8.DecodeLastRuneInString(buf)
		switch {
		case buf == "0" && op == "-":
			buf = op
		case isOperatorRune(last) && utf8.RuneCountInString(buf) == 1:
			// Only '-' may open the buffer.
			if op != "-" {
				m.emitReject(ctx, s, key, "operator at start")
				return
			}
		case isOperatorRune(last):
			buf = buf[:len(buf)-1] + op
		default:
			buf += op
		}

	case textSuffix:
		buf += t.text
	}

	if len(buf) > m.maxBuffer {
		m.emitReject(ctx, s, key, domain.ErrBufferFull.Error())
		return
	}
	s.Buffer = buf
	s.Fresh = false
}

// deleteLast removes the last rune, restoring the placeholder when the buffer empties.
func deleteLast(s *domain.State) {
	_, size := utf8.DecodeLastRuneInString(s.Buffer)
	s.Buffer = s.Buffer[:len(s.Buffer)-size]
	if s.Buffer == "" {
		s.Buffer = "0"
	}
}

// currentNumber returns the trailing run of digits and points.
func currentNumber(buf string) string {
	i := len(buf)
	for i > 0 {
		c := buf[i-1]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		i--
	}
	return buf[i:]
}

func isDigitText(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

func isOperatorRune(r rune) bool {
	return r == '+' || r == '-' || r == '*' || r == '/'
}
