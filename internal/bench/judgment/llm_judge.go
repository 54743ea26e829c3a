package judgment

import (
	"context"
	"log/slog"

	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/suite"
)

const (
	DefaultMaxTokens = 200
	// DefaultTemperature keeps grading deterministic.
	DefaultTemperature float32 = 0

	rubric = `You are an expert evaluator of retrieval-augmented answers.

EVALUATION CRITERIA:
1. FACTUAL PRECISION: are the facts correct according to the reference?
2. COMPLETENESS: does it include the critical details (numbers, conditions, exceptions)?
3. HALLUCINATION: does it invent information that is not in the context?
4. RELEVANCE: does it answer exactly what was asked?

SCALE:
1.0 = Perfect: every critical detail, no hallucinations
0.75 = Good: correct but omits a minor detail
0.5 = Partial: correct in essentials but missing key information
0.25 = Poor: mostly incorrect or hallucinated
0.0 = Failed: completely incorrect or no answer

INSTRUCTIONS:
- Ignore minor wording differences
- Penalize hallucinations heavily
- Numbers and limits are CRITICAL
- If the context lacks the information, the answer must say so

Format:
SCORE: [0.0, 0.25, 0.5, 0.75, 1.0]
REASON: [detailed explanation]`
)

// LLMJudge grades with a chat model using a fixed rubric.
type LLMJudge struct {
	model       engine.Model
	templates   *suite.TemplateRegistry
	maxTokens   int
	temperature float32
}

type Option func(*LLMJudge)

func WithMaxTokens(n int) Option {
	return func(j *LLMJudge) {
		if n > 0 {
			j.maxTokens = n
		}
	}
}

func WithTemperature(t float32) Option {
	return func(j *LLMJudge) {
		if t >= 0 {
			j.temperature = t
		}
	}
}

func NewLLMJudge(model engine.Model, opts ...Option) *LLMJudge {
	j := &LLMJudge{
		model:       model,
		templates:   suite.Defaults(),
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *LLMJudge) Grade(ctx context.Context, c Case) (*Verdict, error) {
	user, err := j.templates.Render("judge", suite.TemplateParams{
		"question":  c.Question,
		"reference": c.Reference,
		"answer":    c.Answer,
	})
	if err != nil {
		return nil, err
	}

	resp, err := j.model.Complete(ctx, engine.Request{
		System:      rubric,
		User:        user,
		MaxTokens:   j.maxTokens,
		Temperature: j.temperature,
	})
	if err != nil {
		return nil, err
	}

	v := ParseVerdict(resp.Text)
	if !v.Parsed {
		slog.Warn("judge reply without score", "model", j.model.Name(), "reply_len", len(resp.Text))
	}
	return v, nil
}

func (j *LLMJudge) Name() string {
	return j.model.Name()
}
