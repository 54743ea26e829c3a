// Package adapter implements the two operations an optimizer calls on the
// harness: Evaluate a candidate over a batch, and turn the result into a
// reflective dataset.
package adapter

import (
	"context"
	"time"

	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/judgment"
	"github.com/mberliner/reflexio/internal/bench/metrics"
	"github.com/mberliner/reflexio/internal/bench/reflective"
)

const SystemPromptComponent = "system_prompt"

// Candidate maps component names to text. It is never modified.
type Candidate map[string]string

func (c Candidate) SystemPrompt() string {
	return c[SystemPromptComponent]
}

type Adapter interface {
	// Evaluate scores cand on every example of batch. Technical failures are
	// reported in EvaluationResult.Errors, not as an error. An error is
	// returned only for an invalid batch or a cancelled context.
	Evaluate(ctx context.Context, batch []dataset.Example, cand Candidate, captureTraces bool) (*EvaluationResult, error)
	MakeReflectiveDataset(batch []dataset.Example, res *EvaluationResult) ([]reflective.Datum, error)
	Name() string
}

type FieldComparison struct {
	Field    string  `json:"field"`
	Expected string  `json:"expected"`
	Got      string  `json:"got"`
	Present  bool    `json:"present"`
	Correct  bool    `json:"correct"`
	Score    float64 `json:"score"`
}

// Output is the scored result for one example. BatchIndex ties it back to
// the example it came from.
type Output struct {
	BatchIndex int               `json:"batch_index"`
	Input      map[string]string `json:"input"`
	Expected   string            `json:"expected"`
	Generated  string            `json:"generated"`
	Parsed     map[string]any    `json:"parsed,omitempty"`
	Fields     []FieldComparison `json:"fields,omitempty"`
	Verdict    *judgment.Verdict `json:"verdict,omitempty"`
	Feedback   string            `json:"feedback"`
	// Latency is the wall time of the generation call.
	Latency time.Duration `json:"latency"`
	// FormatFailure marks output that could not be parsed into the task
	// shape. It is scored 0, not discarded.
	FormatFailure bool `json:"format_failure,omitempty"`
}

type Trajectory struct {
	BatchIndex int     `json:"batch_index"`
	System     string  `json:"system"`
	User       string  `json:"user"`
	Response   string  `json:"response"`
	Score      float64 `json:"score"`
}

// ErrorRecord describes one discarded example.
type ErrorRecord struct {
	BatchIndex   int    `json:"batch_index"`
	InputPreview string `json:"input_preview"`
	ErrorType    string `json:"error_type"`
	Stage        string `json:"stage"`
	Message      string `json:"message"`
}

// EvaluationResult keeps Outputs, Scores and Trajectories aligned and in
// batch order. Total is the batch size before discarding.
type EvaluationResult struct {
	Outputs      []Output      `json:"outputs"`
	Scores       []float64     `json:"scores"`
	Trajectories []Trajectory  `json:"trajectories,omitempty"`
	Errors       []ErrorRecord `json:"errors"`
	Total        int           `json:"total"`
}

func (r *EvaluationResult) Summary(perfect float64) metrics.Summary {
	return metrics.Summarize(r.Scores, r.Total, perfect)
}

func (r *EvaluationResult) Mean() float64 {
	return metrics.Mean(r.Scores)
}
