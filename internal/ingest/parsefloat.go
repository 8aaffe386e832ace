package ingest

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseFloat coerces a cell to a number the way browser parseFloat does:
// leading whitespace is skipped and the longest numeric prefix is used, so
// "2.5kW" is 2.5. Anything without a numeric prefix, including the empty
// string, is NaN.
func ParseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := ""
	rest := s
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		sign, rest = rest[:1], rest[1:]
	}
	if strings.HasPrefix(rest, "Infinity") {
		if sign == "-" {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	n := numericPrefixLen(rest)
	if n == 0 {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(sign+rest[:n], 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			// over/underflow: strconv already returned ±Inf or 0
			return f
		}
		return math.NaN()
	}
	return f
}

// numericPrefixLen returns the length of the longest prefix of s that is a
// decimal literal (digits, optional fraction, optional exponent), or 0.
func numericPrefixLen(s string) int {
	i := 0
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
