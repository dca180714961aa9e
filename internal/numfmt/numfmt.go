// Package numfmt parses and formats user-entered numbers. Both the comma and
// the dot are accepted as decimal separators.
package numfmt

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is the locale numbers are formatted for when none is configured.
var DefaultLocale = language.French

func normalize(s string) string {
	return strings.Replace(strings.TrimSpace(s), ",", ".", 1)
}

// leadingFloat parses the leading run of s made of an optional sign, digits
// and one decimal point, so "12.5g" yields 12.5. Exponents and spelled out
// infinities are not numbers here.
func leadingFloat(s string) (float64, bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits, dot := 0, false
scan:
	for ; i < len(s); i++ {
		switch c := s[i]; {
		case isDigit(c):
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			break scan
		}
	}
	if digits == 0 || hasExponent(s[i:]) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// hasExponent reports whether rest starts like "e5" or "E-3".
func hasExponent(rest string) bool {
	if len(rest) < 2 || (rest[0] != 'e' && rest[0] != 'E') {
		return false
	}
	if isDigit(rest[1]) {
		return true
	}
	return (rest[1] == '+' || rest[1] == '-') && len(rest) > 2 && isDigit(rest[2])
}

// ParseLocalFloat parses s, returning 0 for empty or invalid input.
func ParseLocalFloat(s string) float64 {
	v, ok := leadingFloat(normalize(s))
	if !ok {
		return 0
	}
	return v
}

// IsValidNumber reports whether s starts with a finite number.
func IsValidNumber(s string) bool {
	_, ok := leadingFloat(normalize(s))
	return ok
}

// Round rounds half up, toward positive infinity.
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}

// RoundInt is Round converted to int.
func RoundInt(v float64) int {
	return int(Round(v))
}

// RoundTo rounds v to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return Round(v*factor) / factor
}

// Format renders v for the locale with at most decimals fraction digits.
func Format(tag language.Tag, v float64, decimals int) string {
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(decimals)))
}

// ParseTag resolves a configured locale string, falling back to DefaultLocale.
func ParseTag(s string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil || s == "" {
		return DefaultLocale
	}
	return tag
}
