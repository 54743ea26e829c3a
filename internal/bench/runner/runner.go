package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/metrics"
)

type Runner struct {
	adapter adapter.Adapter
	config  Config
}

func New(a adapter.Adapter, cfg Config) *Runner {
	if cfg.BaselineSplit == "" {
		cfg.BaselineSplit = DefaultBaselineSplit
	}
	if cfg.RobustnessSplit == "" {
		cfg.RobustnessSplit = DefaultRobustnessSplit
	}
	if cfg.PerfectThreshold == 0 {
		cfg.PerfectThreshold = 1
	}
	return &Runner{adapter: a, config: cfg}
}

func (r *Runner) Config() Config { return r.config }

// EvaluateSplit scores cand on one split of ds.
func (r *Runner) EvaluateSplit(ctx context.Context, ds *dataset.Dataset, split dataset.Split, label string, cand adapter.Candidate) (*SplitResult, error) {
	examples := ds.Split(split)
	if len(examples) == 0 {
		return nil, apperr.NewValidation(fmt.Sprintf("split %q is empty", split))
	}

	slog.Info("evaluating candidate", "case", r.config.Case, "label", label, "split", split, "examples", len(examples))
	start := time.Now()
	res, err := r.adapter.Evaluate(ctx, examples, cand, r.config.CaptureTraces)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s on %s: %w", label, split, err)
	}
	elapsed := time.Since(start)

	latencies := make([]time.Duration, 0, len(res.Outputs))
	for _, o := range res.Outputs {
		latencies = append(latencies, o.Latency)
	}

	sr := &SplitResult{
		Label:   label,
		Split:   split,
		Result:  res,
		Summary: metrics.Summarize(res.Scores, res.Total, r.config.PerfectThreshold),
		Latency: ComputeLatencyStats(latencies),
		Elapsed: elapsed,
	}
	slog.Info("candidate evaluated",
		"case", r.config.Case,
		"label", label,
		"split", split,
		"mean", sr.Summary.Mean,
		"valid", sr.Summary.Valid,
		"discarded", sr.Summary.Discarded,
		"elapsed", elapsed,
	)
	return sr, nil
}

// Compare evaluates baseline and optimized on the baseline split and
// optimized on the robustness split. The response cache is bypassed so both
// candidates see fresh model calls.
func (r *Runner) Compare(ctx context.Context, ds *dataset.Dataset, baseline, optimized adapter.Candidate) (*Comparison, error) {
	ctx = engine.WithoutCache(ctx)
	cmp := &Comparison{
		Case:    r.config.Case,
		Adapter: r.adapter.Name(),
		Config:  r.config,
	}

	var err error
	if cmp.Baseline, err = r.EvaluateSplit(ctx, ds, r.config.BaselineSplit, LabelBaseline, baseline); err != nil {
		return nil, err
	}
	if cmp.Optimized, err = r.EvaluateSplit(ctx, ds, r.config.BaselineSplit, LabelOptimized, optimized); err != nil {
		return nil, err
	}

	if len(ds.Split(r.config.RobustnessSplit)) == 0 {
		slog.Warn("robustness split is empty, skipping", "case", r.config.Case, "split", r.config.RobustnessSplit)
	} else if cmp.Robustness, err = r.EvaluateSplit(ctx, ds, r.config.RobustnessSplit, LabelOptimized, optimized); err != nil {
		return nil, err
	}

	slog.Info("comparison finished",
		"case", r.config.Case,
		"baseline", cmp.Baseline.Score(),
		"optimized", cmp.Optimized.Score(),
		"improvement", cmp.Improvement(),
	)
	return cmp, nil
}
