// Package match compares a generated value with an expected value under a
// configurable strictness level.
package match

import (
	"fmt"
	"strings"
	"unicode"
)

type Mode string

const (
	Exact      Mode = "exact"
	Normalized Mode = "normalized"
	Fuzzy      Mode = "fuzzy"
)

const DefaultFuzzyThreshold = 0.85

var modes = map[Mode]struct{}{Exact: {}, Normalized: {}, Fuzzy: {}}

// ParseMode returns an error for unknown modes; callers must not fall back
// to a default silently.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modes[m]; !ok {
		return "", fmt.Errorf("unknown match mode %q (want exact, normalized or fuzzy)", s)
	}
	return m, nil
}

func (m Mode) Valid() bool {
	_, ok := modes[m]
	return ok
}

// Match reports whether actual matches expected under mode. The threshold
// is only consulted in fuzzy mode.
func Match(expected, actual string, mode Mode, fuzzyThreshold float64) bool {
	switch mode {
	case Normalized:
		return Normalize(expected) == Normalize(actual)
	case Fuzzy:
		a, b := Normalize(expected), Normalize(actual)
		if a == b {
			return true
		}
		return Ratio(a, b) >= fuzzyThreshold
	default:
		return fold(expected) == fold(actual)
	}
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize lowercases s, drops punctuation and collapses whitespace runs.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
