package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ms(v ...int) []time.Duration {
	out := make([]time.Duration, len(v))
	for i, n := range v {
		out[i] = time.Duration(n) * time.Millisecond
	}
	return out
}

func TestComputeLatencyStats(t *testing.T) {
	tests := []struct {
		name    string
		in      []time.Duration
		min     time.Duration
		max     time.Duration
		mean    time.Duration
		p50     time.Duration
		samples int
	}{
		{"empty", nil, 0, 0, 0, 0, 0},
		{"single", ms(10), 10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond, 1},
		{"odd", ms(50, 10, 30, 20, 40), 10 * time.Millisecond, 50 * time.Millisecond, 30 * time.Millisecond, 30 * time.Millisecond, 5},
		{"even", ms(10, 20, 30, 40), 10 * time.Millisecond, 40 * time.Millisecond, 25 * time.Millisecond, 25 * time.Millisecond, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeLatencyStats(tt.in)
			assert.Equal(t, tt.min, s.Min)
			assert.Equal(t, tt.max, s.Max)
			assert.Equal(t, tt.mean, s.Mean)
			assert.Equal(t, tt.p50, s.P50())
			assert.Equal(t, tt.samples, s.SampleCount)
			assert.Equal(t, tt.samples == 0, s.IsZero())
		})
	}
}

func TestComputeLatencyStats_DoesNotReorderInput(t *testing.T) {
	in := ms(30, 10, 20)
	s := ComputeLatencyStats(in)
	assert.Equal(t, ms(30, 10, 20), in)
	assert.Equal(t, 60*time.Millisecond, s.Total)
}

func TestComputeLatencyStats_Percentiles(t *testing.T) {
	in := make([]time.Duration, 100)
	for i := range in {
		in[i] = time.Duration(i+1) * time.Millisecond
	}
	s := ComputeLatencyStats(in)

	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50()), float64(time.Millisecond))
	assert.InDelta(t, float64(90*time.Millisecond), float64(s.P90()), float64(time.Millisecond))
	assert.InDelta(t, float64(95*time.Millisecond), float64(s.P95()), float64(time.Millisecond))
}

func TestComputeLatencyStats_Stddev(t *testing.T) {
	assert.Zero(t, ComputeLatencyStats(ms(100, 100, 100)).Stddev)
	assert.Equal(t, 10*time.Millisecond, ComputeLatencyStats(ms(10, 20, 30)).Stddev)
}

func TestMergeLatencyStats(t *testing.T) {
	merged := MergeLatencyStats(ComputeLatencyStats(ms(10, 20)), ComputeLatencyStats(ms(30, 40)))
	assert.Equal(t, 10*time.Millisecond, merged.Min)
	assert.Equal(t, 40*time.Millisecond, merged.Max)
	assert.Equal(t, 25*time.Millisecond, merged.Mean)
	assert.Equal(t, 4, merged.SampleCount)

	assert.True(t, MergeLatencyStats().IsZero())
}

func TestPercentile_EdgeCases(t *testing.T) {
	one := ms(10)
	for _, p := range []int{0, 50, 100} {
		assert.Equal(t, 10*time.Millisecond, percentile(one, p))
	}
	assert.Zero(t, percentile(nil, 50))
}
