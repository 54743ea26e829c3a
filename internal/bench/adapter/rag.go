package adapter

import (
	"context"
	"slices"
	"strings"

	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/judgment"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

const ragMaxTokens = 400

type ragJudge struct {
	question  string
	reference string
	contexts  []string
	judge     judgment.Judge
}

// NewRAGJudge builds an adapter whose free-text answers are graded by judge
// on the five-level scale.
func NewRAGJudge(task *spec.TaskSpec, model engine.Model, judge judgment.Judge) (Adapter, error) {
	h, err := newHarness(task, spec.RAGJudge, model)
	if err != nil {
		return nil, err
	}
	if judge == nil {
		return nil, newMissingJudge()
	}

	question := "question"
	if !slices.Contains(h.task.InputFields, question) {
		question = h.task.InputFields[0]
	}
	var contexts []string
	for _, f := range h.task.InputFields {
		if f != question {
			contexts = append(contexts, f)
		}
	}
	h.variant = &ragJudge{
		question:  question,
		reference: h.task.OutputFields[0],
		contexts:  contexts,
		judge:     judge,
	}
	return h, nil
}

func (r *ragJudge) maxTokens() int          { return ragMaxTokens }
func (r *ragJudge) contextFields() []string { return r.contexts }
func (r *ragJudge) sanitize() bool          { return true }

func (r *ragJudge) score(ctx context.Context, ex dataset.Example, response string) (scored, error) {
	answer := strings.TrimSpace(response)
	reference := ex.Expect(r.reference)

	verdict, err := r.judge.Grade(ctx, judgment.Case{
		Question:  ex.Input(r.question),
		Reference: reference,
		Answer:    answer,
	})
	if err != nil {
		return scored{}, judgeFailure(err)
	}

	out := Output{
		Expected:      reference,
		Generated:     answer,
		Verdict:       verdict,
		Feedback:      verdict.Rationale,
		FormatFailure: !verdict.Parsed,
	}
	return scored{output: out, score: float64(verdict.Grade)}, nil
}
