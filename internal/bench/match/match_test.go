package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		mode     Mode
		want     bool
	}{
		{"exact ignores case", "Urgent", "urgent", Exact, true},
		{"exact trims", "  urgent\n", "URGENT", Exact, true},
		{"exact keeps punctuation", "$2,999", "$2999", Exact, false},
		{"exact rejects different words", "urgent", "normal", Exact, false},
		{"normalized strips currency comma", "$2,999", "$2999", Normalized, true},
		{"normalized date punctuation", "2024-01-15", "20240115", Normalized, true},
		{"normalized collapses whitespace", "Juan   Pérez", "juan pérez", Normalized, true},
		{"normalized email case", "juan@x.com", "JUAN@X.COM", Normalized, true},
		{"normalized keeps different values", "$2,999", "$3,999", Normalized, false},
		{"fuzzy accepts plural", "invoice", "invoices", Fuzzy, true},
		{"fuzzy accepts normalized match first", "a.b", "AB", Fuzzy, true},
		{"fuzzy rejects unrelated", "apple", "orange", Fuzzy, false},
		{"unknown mode behaves as exact", "A", "a", Mode("other"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.expected, tt.actual, tt.mode, DefaultFuzzyThreshold))
		})
	}
}

func TestMatch_FuzzyMonotonicInThreshold(t *testing.T) {
	pairs := [][2]string{
		{"invoice", "invoices"},
		{"customer name", "customers names"},
		{"madrid", "barcelona"},
		{"abcd", "bcde"},
	}
	thresholds := []float64{0, 0.25, 0.5, 0.75, 0.85, 0.95, 1}

	for _, p := range pairs {
		matchedAt := make([]bool, len(thresholds))
		for i, th := range thresholds {
			matchedAt[i] = Match(p[0], p[1], Fuzzy, th)
		}
		for i := 1; i < len(thresholds); i++ {
			if matchedAt[i] {
				assert.True(t, matchedAt[i-1], "pair %v matched at %.2f but not at %.2f", p, thresholds[i], thresholds[i-1])
			}
		}
	}
}

func TestMatch_FuzzyThresholdBoundary(t *testing.T) {
	// ratio("abcd", "bcde") is exactly 0.75
	assert.True(t, Match("abcd", "bcde", Fuzzy, 0.75))
	assert.False(t, Match("abcd", "bcde", Fuzzy, 0.76))
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "", 0},
		{"abc", "abc", 1},
		{"abcd", "bcde", 0.75},
		{"invoice", "invoices", 14.0 / 15.0},
		{"apple", "orange", 4.0 / 11.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("  Hello,   World! "))
	assert.Equal(t, "snake_case stays", Normalize("snake_case stays."))
	assert.Equal(t, "", Normalize("?!"))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Fuzzy ")
	require.NoError(t, err)
	assert.Equal(t, Fuzzy, m)

	_, err = ParseMode("loose")
	assert.Error(t, err)
	assert.False(t, Mode("loose").Valid())
}
