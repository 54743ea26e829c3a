package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/mberliner/reflexio/internal/bench/runner"
)

// RunRecord is the metrics row kept for every comparison run. Nil scores
// and flags are reported as not available.
type RunRecord struct {
	RunID              string    `json:"run_id"`
	Timestamp          time.Time `json:"timestamp"`
	Case               string    `json:"case"`
	TaskModel          string    `json:"task_model"`
	ReflectionModel    string    `json:"reflection_model,omitempty"`
	BaselineScore      *float64  `json:"baseline_score,omitempty"`
	OptimizedScore     *float64  `json:"optimized_score,omitempty"`
	RobustnessScore    *float64  `json:"robustness_score,omitempty"`
	RunDir             string    `json:"run_dir"`
	PositiveReflection *bool     `json:"positive_reflection,omitempty"`
	Budget             *int      `json:"budget,omitempty"`
	Notes              string    `json:"notes,omitempty"`
}

// NewRunID returns the first 8 characters of a random UUID.
func NewRunID() string {
	return uuid.NewString()[:8]
}

// RecordOptions carries the run details a comparison does not know.
type RecordOptions struct {
	RunID              string
	Timestamp          time.Time
	TaskModel          string
	ReflectionModel    string
	RunDir             string
	PositiveReflection *bool
	Budget             *int
	Notes              string
}

func NewRunRecord(cmp *runner.Comparison, opts RecordOptions) RunRecord {
	rec := RunRecord{
		RunID:              opts.RunID,
		Timestamp:          opts.Timestamp,
		Case:               cmp.Case,
		TaskModel:          opts.TaskModel,
		ReflectionModel:    opts.ReflectionModel,
		RunDir:             opts.RunDir,
		PositiveReflection: opts.PositiveReflection,
		Budget:             opts.Budget,
		Notes:              opts.Notes,
	}
	if rec.RunID == "" {
		rec.RunID = NewRunID()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.BaselineScore = scoreOf(cmp.Baseline)
	rec.OptimizedScore = scoreOf(cmp.Optimized)
	rec.RobustnessScore = scoreOf(cmp.Robustness)
	return rec
}

// scoreOf is nil when nothing was scored, so an all-discarded evaluation is
// not mistaken for a score of 0.
func scoreOf(sr *runner.SplitResult) *float64 {
	if sr == nil || sr.Summary.Valid == 0 {
		return nil
	}
	v := sr.Summary.Mean
	return &v
}
