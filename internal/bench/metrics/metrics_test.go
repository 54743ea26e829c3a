package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{0.5}, 0.5},
		{"discarded example excluded", []float64{1, 1, 0, 1}, 0.75},
		{"graded", []float64{0, 0.25, 0.5, 0.75, 1}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Mean(tt.scores), 1e-9)
		})
	}
}

func TestPassRate(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float64
		perfect float64
		want    float64
	}{
		{"empty", nil, 1, 0},
		{"all perfect", []float64{1, 1}, 1, 1},
		{"partial credit is not perfect", []float64{1, 0.75, 0.5, 0}, 1, 0.25},
		{"lower perfect threshold", []float64{1, 0.75, 0.5, 0}, 0.75, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PassRate(tt.scores, tt.perfect), 1e-9)
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 1, 0, 1}, 5, 1)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 4, s.Valid)
	assert.Equal(t, 1, s.Discarded)
	assert.InDelta(t, 0.75, s.Mean, 1e-9)
	assert.InDelta(t, 0.75, s.PassRate, 1e-9)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 1.0, s.Max)
}

func TestSummarize_AllDiscarded(t *testing.T) {
	s := Summarize(nil, 3, 1)

	assert.Equal(t, 0, s.Valid)
	assert.Equal(t, 3, s.Discarded)
	assert.Equal(t, 0.0, s.Mean)
	assert.InDelta(t, 1.0, DiscardRate(s.Discarded, s.Total), 1e-9)
}

func TestLevelCounts(t *testing.T) {
	counts := LevelCounts([]float64{0.5, 1, 0.5, 0.25})

	assert.Equal(t, map[string]int{"0.25": 1, "0.50": 2, "1.00": 1}, counts)
	assert.Equal(t, []string{"0.25", "0.50", "1.00"}, Levels(counts))
}
