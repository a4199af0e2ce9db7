package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Key is a discrete keypad code. Codes 0..63 match the wire protocol of the
// hardware keypad; the variable keys above them are only produced by text
// and JSON sources.
type Key uint32

const (
	KeyNone Key = iota
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyPlus
	KeyMinus
	KeyMultiply
	KeyDivide
	KeyEqual
	KeyClear
	KeyDot
	KeyBackspace
	KeySin
	KeyCos
	KeyTan
	KeyLog
	KeyLn
	KeySqrt
	KeyPower
	KeyFactorial
	KeyPi
	KeyE
	KeyParenLeft
	KeyParenRight
	KeyShift
	KeyAlpha
	KeyMode
	KeyOnAC
	KeyXPowY
	KeyXPowMinus1
	KeyLog10
	KeyExp
	KeyPercent
	KeyAns
	KeyEng
	KeySetup
	KeyStat
	KeyMatrix
	KeyVector
	KeyCmplx
	KeyBaseN
	KeyEquation
	KeyCalc
	KeySolve
	KeyIntegrate
	KeyDiff
	KeyTable
	KeyReset
	KeyRanHash
	KeyDRG
	KeyHyp
	KeySTO
	KeyRCL
	KeyConst
	KeyConv
	KeyFunc
	KeyOptn

	KeyVarX
	KeyVarY
	KeyVarA
	KeyVarB
	KeyVarC
	KeyVarD
	KeyVarM

	keyCount
)

// MaxKeypadCode is the highest code the binary keypad protocol may carry.
const MaxKeypadCode = KeyOptn

var keyNames = [keyCount]string{
	"NONE", "0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"PLUS", "MINUS", "MULTIPLY", "DIVIDE", "EQUAL", "CLEAR", "DOT", "BACKSPACE",
	"SIN", "COS", "TAN", "LOG", "LN", "SQRT", "POWER", "FACTORIAL", "PI", "E",
	"PAREN_LEFT", "PAREN_RIGHT", "SHIFT", "ALPHA", "MODE", "ON_AC",
	"X_POW_Y", "X_POW_MINUS1", "LOG10", "EXP", "PERCENT", "ANS", "ENG",
	"SETUP", "STAT", "MATRIX", "VECTOR", "CMPLX", "BASE_N", "EQUATION", "CALC",
	"SOLVE", "INTEGRATE", "DIFF", "TABLE", "RESET", "RAN_HASH", "DRG", "HYP",
	"STO", "RCL", "CONST", "CONV", "FUNC", "OPTN",
	"VAR_X", "VAR_Y", "VAR_A", "VAR_B", "VAR_C", "VAR_D", "VAR_M",
}

// aliases maps the short spellings accepted by text sources.
var aliases = map[string]Key{
	"+": KeyPlus, "-": KeyMinus, "*": KeyMultiply, "/": KeyDivide, "=": KeyEqual,
	".": KeyDot, "(": KeyParenLeft, ")": KeyParenRight, "^": KeyPower, "!": KeyFactorial,
	"ADD": KeyPlus, "SUB": KeyMinus, "MUL": KeyMultiply, "DIV": KeyDivide,
	"ENTER": KeyEqual, "EQUALS": KeyEqual, "AC": KeyClear, "DEL": KeyBackspace,
	"DOT": KeyDot, "POINT": KeyDot, "LPAREN": KeyParenLeft, "RPAREN": KeyParenRight,
	"π": KeyPi, "√": KeySqrt, "X": KeyVarX, "Y": KeyVarY, "A": KeyVarA, "B": KeyVarB,
	"C": KeyVarC, "D": KeyVarD, "M": KeyVarM,
}

// String returns the canonical key name.
func (k Key) String() string {
	if k < keyCount {
		return keyNames[k]
	}
	return "KEY(" + strconv.FormatUint(uint64(k), 10) + ")"
}

// Valid reports whether k belongs to the keypad set.
func (k Key) Valid() bool {
	return k < keyCount
}

// IsDigit reports whether k is one of the ten digit keys.
func (k Key) IsDigit() bool {
	return k >= Key0 && k <= Key9
}

// Digit returns the ASCII digit for a digit key.
func (k Key) Digit() byte {
	return byte('0' + (k - Key0))
}

// IsOperator reports whether k is one of the four arithmetic operator keys.
func (k Key) IsOperator() bool {
	return k >= KeyPlus && k <= KeyDivide
}

// IsVariable reports whether k is one of the variable keys.
func (k Key) IsVariable() bool {
	return k >= KeyVarX && k <= KeyVarM
}

// Variable returns the variable bound to a variable key.
func (k Key) Variable() (Variable, bool) {
	if !k.IsVariable() {
		return 0, false
	}
	return VarX + Variable(k-KeyVarX), true
}

// MarshalText encodes the key by name.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKey, uint32(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names understood by ParseKey.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKey resolves a key from its canonical name, an alias, or a numeric code.
// Canonical names are matched case-insensitively.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return KeyNone, fmt.Errorf("%w: empty", ErrUnknownKey)
	}
	if k, ok := aliases[s]; ok {
		return k, nil
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		// Single digits are digit keys, not codes.
		if len(s) == 1 {
			return Key0 + Key(n), nil
		}
		if k := Key(n); k.Valid() {
			return k, nil
		}
		return KeyNone, fmt.Errorf("%w: %s", ErrUnknownKey, s)
	}
	upper := strings.ToUpper(s)
	if k, ok := aliases[upper]; ok {
		return k, nil
	}
	for i, name := range keyNames {
		if name == upper {
			return Key(i), nil
		}
	}
	return KeyNone, fmt.Errorf("%w: %s", ErrUnknownKey, s)
}

// AllKeys lists every key in code order.
func AllKeys() []Key {
	keys := make([]Key, keyCount)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// KeysForExpression translates expression text into the key sequence that
// would type it. Functions printed above a key are typed with SHIFT or ALPHA
// first. A radical sign is typed as SQRT and closed after the operand that
// follows it, so "√4" becomes "sqrt(4)". Characters that have no key return
// ErrUnknownKey.
func KeysForExpression(s string) ([]Key, error) {
	var keys []Key
	for i := 0; i < len(s); {
		rest := s[i:]
		if strings.HasPrefix(rest, "√") {
			typed, n, err := radicalKeys(rest[len("√"):])
			if err != nil {
				return nil, err
			}
			keys = append(keys, typed...)
			i += len("√") + n
			continue
		}
		if typed, n, ok := matchWord(rest); ok {
			keys = append(keys, typed...)
			i += n
			continue
		}
		r, size := utf8.DecodeRuneInString(rest)
		if r == ' ' {
			i++
			continue
		}
		k, ok := glyphKey(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, r)
		}
		keys = append(keys, k)
		i += size
	}
	return keys, nil
}

func glyphKey(r rune) (Key, bool) {
	if r >= '0' && r <= '9' {
		return Key0 + Key(r-'0'), true
	}
	k, ok := aliases[string(r)]
	return k, ok
}

// radicalKeys types the operand of a radical sign. A parenthesised operand
// reuses the parenthesis SQRT opens; a number or a single named value is
// closed right after it.
func radicalKeys(s string) ([]Key, int, error) {
	if strings.HasPrefix(s, "(") {
		return []Key{KeySqrt}, 1, nil
	}
	keys := []Key{KeySqrt}
	n := 0
	for n < len(s) && (s[n] >= '0' && s[n] <= '9' || s[n] == '.') {
		k, _ := glyphKey(rune(s[n]))
		keys = append(keys, k)
		n++
	}
	if n == 0 {
		typed, size, ok := matchWord(s)
		if !ok || len(typed) != 1 || !isValueKey(typed[0]) {
			r, rs := utf8.DecodeRuneInString(s)
			k, found := glyphKey(r)
			if !found || !isValueKey(k) {
				return nil, 0, fmt.Errorf("%w: radical sign without an operand", ErrUnknownKey)
			}
			typed, size = []Key{k}, rs
		}
		keys = append(keys, typed...)
		n = size
	}
	return append(keys, KeyParenRight), n, nil
}

func isValueKey(k Key) bool {
	return k == KeyPi || k == KeyE || k == KeyAns || k.IsVariable()
}

// words lists multi-character expression spellings, longest first.
var words = []struct {
	text string
	keys []Key
}{
	{"log10(", []Key{KeyLog10}},
	{"sqrt(", []Key{KeySqrt}},
	{"asin(", []Key{KeyShift, KeySin}},
	{"acos(", []Key{KeyShift, KeyCos}},
	{"atan(", []Key{KeyShift, KeyTan}},
	{"sinh(", []Key{KeyAlpha, KeySin}},
	{"cosh(", []Key{KeyAlpha, KeyCos}},
	{"tanh(", []Key{KeyAlpha, KeyTan}},
	{"exp(", []Key{KeyShift, KeyLn}},
	{"abs(", []Key{KeyAlpha, KeySqrt}},
	{"sin(", []Key{KeySin}},
	{"cos(", []Key{KeyCos}},
	{"tan(", []Key{KeyTan}},
	{"log(", []Key{KeyLog}},
	{"Ans", []Key{KeyAns}},
	{"ln(", []Key{KeyLn}},
	{"pi", []Key{KeyPi}},
	{"e", []Key{KeyE}},
}

func matchWord(s string) ([]Key, int, bool) {
	for _, w := range words {
		if strings.HasPrefix(s, w.text) {
			return w.keys, len(w.text), true
		}
	}
	return nil, 0, false
}
