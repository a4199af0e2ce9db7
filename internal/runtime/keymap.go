package runtime

import "github.com/aretw0/abacus/pkg/domain"

// textKind decides how a key's text joins the buffer.
type textKind uint8

const (
	// textOperand starts or extends an operand: digits, names, parentheses.
	textOperand textKind = iota
	// textPoint is the decimal point.
	textPoint
	// textOperator is one of the four binary operators.
	textOperator
	// textSuffix continues the previous operand: powers, factorial, percent.
	textSuffix
)

type keyText struct {
	text string
	kind textKind
}

// plainText maps keys to the text they type without modifiers.
var plainText = map[domain.Key]keyText{
	domain.KeyDot:        {".", textPoint},
	domain.KeyPlus:       {"+", textOperator},
	domain.KeyMinus:      {"-", textOperator},
	domain.KeyMultiply:   {"*", textOperator},
	domain.KeyDivide:     {"/", textOperator},
	domain.KeySin:        {"sin(", textOperand},
	domain.KeyCos:        {"cos(", textOperand},
	domain.KeyTan:        {"tan(", textOperand},
	domain.KeyLog:        {"log(", textOperand},
	domain.KeyLn:         {"ln(", textOperand},
	domain.KeySqrt:       {"sqrt(", textOperand},
	domain.KeyLog10:      {"log10(", textOperand},
	domain.KeyPi:         {"π", textOperand},
	domain.KeyE:          {"e", textOperand},
	domain.KeyAns:        {"Ans", textOperand},
	domain.KeyParenLeft:  {"(", textOperand},
	domain.KeyParenRight: {")", textOperand},
	domain.KeyPower:      {"^", textSuffix},
	domain.KeyXPowY:      {"^", textSuffix},
	domain.KeyXPowMinus1: {"^-1", textSuffix},
	domain.KeyFactorial:  {"!", textSuffix},
	domain.KeyPercent:    {"/100", textSuffix},
	domain.KeyExp:        {"*10^", textSuffix},
}

// shiftText holds the complementary functions printed above the keys.
var shiftText = map[domain.Key]keyText{
	domain.KeySin:  {"asin(", textOperand},
	domain.KeyCos:  {"acos(", textOperand},
	domain.KeyTan:  {"atan(", textOperand},
	domain.KeyLog:  {"10^(", textOperand},
	domain.KeyLn:   {"exp(", textOperand},
	domain.KeySqrt: {"^2", textSuffix},
	domain.KeyExp:  {"π", textOperand},
}

// alphaText holds the hyperbolic and secondary functions.
var alphaText = map[domain.Key]keyText{
	domain.KeySin:  {"sinh(", textOperand},
	domain.KeyCos:  {"cosh(", textOperand},
	domain.KeyTan:  {"tanh(", textOperand},
	domain.KeyLog:  {"log10(", textOperand},
	domain.KeySqrt: {"abs(", textOperand},
}

// textFor resolves what a key types under the active modifiers.
// Shift takes priority over Alpha when both are set.
func textFor(s *domain.State, key domain.Key) (keyText, bool) {
	if key.IsDigit() {
		return keyText{string(key.Digit()), textOperand}, true
	}
	if v, ok := key.Variable(); ok {
		return keyText{v.String(), textOperand}, true
	}
	if s.Shift {
		if t, ok := shiftText[key]; ok {
			return t, true
		}
	}
	if s.Alpha {
		if t, ok := alphaText[key]; ok {
			return t, true
		}
	}
	t, ok := plainText[key]
	return t, ok
}

// errorReentryKeys lists the keys that are typed after dismissing an error.
// Every other key only dismisses it.
var errorReentryKeys = map[domain.Key]bool{
	domain.KeyDot: true, domain.KeyPlus: true, domain.KeyMinus: true,
	domain.KeyMultiply: true, domain.KeyDivide: true,
	domain.KeyParenLeft: true, domain.KeyParenRight: true,
	domain.KeySin: true, domain.KeyCos: true, domain.KeyTan: true,
	domain.KeyLog: true, domain.KeyLn: true, domain.KeySqrt: true,
}

// actionNames describes keys that act instead of typing.
var actionNames = map[domain.Key]string{
	domain.KeyEqual:     "evaluate",
	domain.KeyClear:     "clear",
	domain.KeyOnAC:      "clear",
	domain.KeyBackspace: "delete last",
	domain.KeyShift:     "shift",
	domain.KeyAlpha:     "alpha",
	domain.KeyMode:      "menu",
	domain.KeyDRG:       "toggle deg/rad",
	domain.KeyEng:       "cycle display format",
	domain.KeyReset:     "clear memory",
	domain.KeySTO:       "store Ans into next variable",
}

// KeyLegend is what a key does plain, shifted and with alpha.
type KeyLegend struct {
	Key   domain.Key
	Plain string
	Shift string
	Alpha string
}

// Legends lists every key that does something, in key code order.
func Legends() []KeyLegend {
	var out []KeyLegend
	for _, k := range domain.AllKeys() {
		l := KeyLegend{Key: k}
		switch {
		case k.IsDigit():
			l.Plain = string(k.Digit())
		case k.IsVariable():
			v, _ := k.Variable()
			l.Plain = v.String()
		default:
			l.Plain = plainText[k].text
			if name, ok := actionNames[k]; ok {
				l.Plain = name
			}
		}
		l.Shift = shiftText[k].text
		l.Alpha = alphaText[k].text
		if l.Plain == "" && l.Shift == "" && l.Alpha == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
