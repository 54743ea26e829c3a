package metrics

import (
	"math"
	"sort"
)

// Summary condenses one evaluated batch. Discarded examples are technical
// failures and are not part of Valid.
type Summary struct {
	Total     int            `json:"total"`
	Valid     int            `json:"valid"`
	Discarded int            `json:"discarded"`
	Mean      float64        `json:"mean"`
	PassRate  float64        `json:"pass_rate"`
	Min       float64        `json:"min"`
	Max       float64        `json:"max"`
	Levels    map[string]int `json:"levels,omitempty"`
}

// Summarize builds a Summary over valid scores. total is the batch size
// before discarding.
func Summarize(scores []float64, total int, perfect float64) Summary {
	s := Summary{
		Total:     total,
		Valid:     len(scores),
		Discarded: total - len(scores),
		Mean:      Mean(scores),
		PassRate:  PassRate(scores, perfect),
	}
	if len(scores) > 0 {
		s.Min, s.Max = scores[0], scores[0]
		for _, v := range scores[1:] {
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
		}
		s.Levels = LevelCounts(scores)
	}
	return s
}

// Mean returns the arithmetic mean, 0 for no scores.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}

// PassRate is the fraction of scores at or above perfect.
func PassRate(scores []float64, perfect float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var n int
	for _, v := range scores {
		if v >= perfect {
			n++
		}
	}
	return float64(n) / float64(len(scores))
}

// DiscardRate is the share of the batch lost to technical failures.
func DiscardRate(discarded, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(discarded) / float64(total)
}

// LevelCounts counts occurrences of each distinct score, keyed by its
// two-decimal rendering. Used for graded judge scales.
func LevelCounts(scores []float64) map[string]int {
	counts := make(map[string]int)
	for _, v := range scores {
		counts[formatLevel(v)]++
	}
	return counts
}

// Levels returns the keys of counts in ascending numeric order.
func Levels(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
