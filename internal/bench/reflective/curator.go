package reflective

import (
	"log/slog"
	"math"
	"slices"
)

const (
	SuccessPrefix = "SUCCESSFUL EXAMPLE: "

	defaultFraction = 0.2
	defaultPerfect  = 1.0
)

type Config struct {
	// MaxPositiveExamples nil derives the quota from the number of items.
	MaxPositiveExamples *int
	MaxPositiveFraction float64
	PerfectThreshold    float64
	MaxTextLength       int
	MaxContextLength    int
	// ContextFields are truncated to MaxContextLength instead of
	// MaxTextLength.
	ContextFields []string
	// Sanitizer, when set, rewrites every text field of the curated set.
	Sanitizer *Sanitizer
}

// PositiveQuota is the default number of positives for n scored examples:
// 1 up to 10 examples, one more per 5 examples after that, at most 5.
func PositiveQuota(n int) int {
	if n <= 10 {
		return 1
	}
	return min(5, 1+(n-10)/5)
}

// MaxPositives is the largest positive count that keeps positives at or
// below fraction of a set holding the given negatives.
func MaxPositives(negatives int, fraction float64) int {
	if fraction <= 0 || negatives == 0 {
		return 0
	}
	if fraction >= 1 {
		return math.MaxInt
	}
	return int(math.Floor(fraction*float64(negatives)/(1-fraction) + 1e-9))
}

// Curate keeps every item below the perfect threshold and adds positives in
// input order up to the quota and the fraction cap.
func Curate(items []Item, cfg Config) []Datum {
	perfect := cfg.PerfectThreshold
	if perfect <= 0 {
		perfect = defaultPerfect
	}
	fraction := cfg.MaxPositiveFraction
	if fraction <= 0 {
		fraction = defaultFraction
	}

	var negatives, positives []Item
	for _, it := range items {
		if it.Score < perfect {
			negatives = append(negatives, it)
		} else {
			positives = append(positives, it)
		}
	}

	quota := PositiveQuota(len(items))
	if cfg.MaxPositiveExamples != nil {
		quota = *cfg.MaxPositiveExamples
	}
	quota = min(quota, MaxPositives(len(negatives), fraction), len(positives))

	out := make([]Datum, 0, len(negatives)+quota)
	for _, it := range negatives {
		out = append(out, cfg.datum(it, Negative, it.Feedback))
	}
	for _, it := range positives[:max(quota, 0)] {
		out = append(out, cfg.datum(it, Positive, SuccessPrefix+it.Feedback))
	}

	if len(out) > 0 {
		slog.Info("reflective dataset built", "negatives", len(negatives), "positives", max(quota, 0), "available_positives", len(positives))
	}
	return out
}

func (cfg Config) datum(it Item, kind Kind, feedback string) Datum {
	input := make(map[string]string, len(it.Input))
	for k, v := range it.Input {
		limit := cfg.MaxTextLength
		if slices.Contains(cfg.ContextFields, k) {
			limit = cfg.MaxContextLength
		}
		input[k] = Truncate(v, limit, k)
	}

	d := Datum{
		BatchIndex:      it.BatchIndex,
		Input:           input,
		ExpectedOutput:  it.Expected,
		GeneratedOutput: it.Generated,
		Feedback:        feedback,
		Score:           it.Score,
		Kind:            kind,
	}
	if cfg.Sanitizer != nil {
		d = cfg.Sanitizer.Datum(d)
	}
	return d
}

// Truncate cuts s to limit runes and marks the cut with "...". A limit of
// zero or less leaves s alone.
func Truncate(s string, limit int, field string) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	slog.Debug("truncated field for reflection", "field", field, "from", len(r), "to", limit)
	return string(r[:limit]) + "..."
}
