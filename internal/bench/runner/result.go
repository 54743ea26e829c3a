package runner

import (
	"time"

	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/metrics"
)

const (
	LabelBaseline  = "baseline"
	LabelOptimized = "optimized"
)

// SplitResult is one candidate evaluated on one split.
type SplitResult struct {
	Label   string                    `json:"label"`
	Split   dataset.Split             `json:"split"`
	Result  *adapter.EvaluationResult `json:"result"`
	Summary metrics.Summary           `json:"summary"`
	Latency LatencyStats              `json:"latency"`
	Elapsed time.Duration             `json:"elapsed"`
}

func (s *SplitResult) Score() float64 {
	if s == nil {
		return 0
	}
	return s.Summary.Mean
}

// Comparison holds the three evaluations of a baseline against an optimized
// candidate. Robustness is nil when the robustness split is empty.
type Comparison struct {
	Case       string       `json:"case"`
	Adapter    string       `json:"adapter"`
	Config     Config       `json:"config"`
	Baseline   *SplitResult `json:"baseline"`
	Optimized  *SplitResult `json:"optimized"`
	Robustness *SplitResult `json:"robustness,omitempty"`
}

// Improvement is the optimized score minus the baseline score on the same
// split.
func (c *Comparison) Improvement() float64 {
	return c.Optimized.Score() - c.Baseline.Score()
}

// Results returns the evaluations in the order they ran.
func (c *Comparison) Results() []*SplitResult {
	out := []*SplitResult{c.Baseline, c.Optimized}
	if c.Robustness != nil {
		out = append(out, c.Robustness)
	}
	return out
}
