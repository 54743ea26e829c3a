package dto

import (
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/metrics"
	"github.com/mberliner/reflexio/internal/bench/reflective"
)

type Example struct {
	Inputs   map[string]string `json:"inputs" validate:"required" swaggertype:"object,string"`
	Expected map[string]string `json:"expected" validate:"required" swaggertype:"object,string"`
}

type EvaluateRequest struct {
	Batch []Example `json:"batch" validate:"dive"`
	// Candidate maps component names to text; "system_prompt" is the only
	// component the adapters read.
	Candidate     map[string]string `json:"candidate" validate:"required" swaggertype:"object,string"`
	CaptureTraces bool              `json:"capture_traces"`
	DisableCache  bool              `json:"disable_cache"`
}

type EvaluateResponse struct {
	Adapter      string                `json:"adapter"`
	Outputs      []adapter.Output      `json:"outputs"`
	Scores       []float64             `json:"scores"`
	Trajectories []adapter.Trajectory  `json:"trajectories,omitempty"`
	Errors       []adapter.ErrorRecord `json:"errors"`
	Total        int                   `json:"total"`
	Summary      metrics.Summary       `json:"summary"`
}

type ReflectiveDatasetRequest struct {
	Batch  []Example                 `json:"batch" validate:"dive"`
	Result *adapter.EvaluationResult `json:"result" validate:"required"`
}

type ReflectiveDatasetResponse struct {
	Adapter   string             `json:"adapter"`
	Data      []reflective.Datum `json:"data"`
	Negatives int                `json:"negatives"`
	Positives int                `json:"positives"`
}

// ToExamples converts request examples. An empty list yields nil.
func ToExamples(in []Example) []dataset.Example {
	if len(in) == 0 {
		return nil
	}
	out := make([]dataset.Example, len(in))
	for i, ex := range in {
		out[i] = dataset.Example{Row: i + 1, Inputs: ex.Inputs, Expected: ex.Expected}
	}
	return out
}

func NewEvaluateResponse(name string, res *adapter.EvaluationResult, perfect float64) EvaluateResponse {
	return EvaluateResponse{
		Adapter:      name,
		Outputs:      nonNil(res.Outputs),
		Scores:       nonNil(res.Scores),
		Trajectories: res.Trajectories,
		Errors:       nonNil(res.Errors),
		Total:        res.Total,
		Summary:      res.Summary(perfect),
	}
}

func NewReflectiveDatasetResponse(name string, data []reflective.Datum) ReflectiveDatasetResponse {
	neg, pos := reflective.Count(data)
	return ReflectiveDatasetResponse{
		Adapter:   name,
		Data:      nonNil(data),
		Negatives: neg,
		Positives: pos,
	}
}

// nonNil keeps empty lists as [] rather than null in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
