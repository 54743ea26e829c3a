package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/reflective"
	"github.com/mberliner/reflexio/internal/bench/spec"
	"github.com/mberliner/reflexio/internal/bench/suite"
)

// scored is what a variant produces for one completed call.
type scored struct {
	output Output
	score  float64
}

// variant holds what differs between task types: the response budget and
// how a response is parsed, compared and explained.
type variant interface {
	maxTokens() int
	// score grades response for ex. An error means a further model call
	// failed and the example must be discarded.
	score(ctx context.Context, ex dataset.Example, response string) (scored, error)
	contextFields() []string
	sanitize() bool
}

// harness runs a variant over a batch. It is safe for concurrent use.
type harness struct {
	name     string
	task     spec.TaskSpec
	model    engine.Model
	template *suite.RequestTemplate
	variant  variant
}

func newHarness(task *spec.TaskSpec, want spec.AdapterType, model engine.Model) (*harness, error) {
	if task == nil {
		return nil, apperr.NewConfig("task", "task spec is required")
	}
	if model == nil {
		return nil, apperr.NewConfig("models.task", "task model is required")
	}
	t := *task
	if t.Type == "" {
		t.Type = want
	}
	if t.Type != want {
		return nil, apperr.NewConfig("type", fmt.Sprintf("expected %s task, got %s", want, t.Type))
	}
	if err := spec.Validate(&t); err != nil {
		return nil, err
	}
	tmpl := &suite.RequestTemplate{ID: t.Name, Text: t.InputTemplate}
	if err := tmpl.Validate(); err != nil {
		return nil, apperr.NewConfigWrap("input_template", "invalid template", err)
	}
	return &harness{name: string(t.Type), task: t, model: model, template: tmpl}, nil
}

func (h *harness) Name() string { return h.name }

// Task returns the validated task the adapter runs.
func (h *harness) Task() spec.TaskSpec { return h.task }

func (h *harness) Evaluate(ctx context.Context, batch []dataset.Example, cand Candidate, captureTraces bool) (*EvaluationResult, error) {
	if err := h.checkBatch(batch); err != nil {
		return nil, err
	}
	system := cand.SystemPrompt()
	if system == "" {
		slog.Warn("candidate has no system prompt", "adapter", h.name, "component", SystemPromptComponent)
	}

	type slot struct {
		scored
		trajectory *Trajectory
		failure    *ErrorRecord
	}
	slots := make([]slot, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, h.task.Execution.NumThreads))
	for i, ex := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			user, err := h.template.Render(suite.TemplateParams(ex.Inputs))
			if err != nil {
				return apperr.NewValidationWrap(fmt.Sprintf("example %d", i), err)
			}

			res, err := h.run(gctx, ex, system, user)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				rec := newErrorRecord(i, user, err)
				recordFailure(h.name, rec)
				slots[i].failure = &rec
				return nil
			}

			res.output.BatchIndex = i
			slots[i].scored = res
			if captureTraces {
				slots[i].trajectory = &Trajectory{
					BatchIndex: i,
					System:     system,
					User:       user,
					Response:   res.output.Generated,
					Score:      res.score,
				}
			}
			if res.output.FormatFailure {
				recordOutcome(h.name, "format_failure")
			} else {
				recordOutcome(h.name, "scored")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &EvaluationResult{
		Outputs: make([]Output, 0, len(batch)),
		Scores:  make([]float64, 0, len(batch)),
		Errors:  []ErrorRecord{},
		Total:   len(batch),
	}
	for _, s := range slots {
		if s.failure != nil {
			result.Errors = append(result.Errors, *s.failure)
			continue
		}
		result.Outputs = append(result.Outputs, s.output)
		result.Scores = append(result.Scores, s.score)
		if s.trajectory != nil {
			result.Trajectories = append(result.Trajectories, *s.trajectory)
		}
	}

	logDiscarded(h.name, result.Errors, result.Total)
	if len(result.Scores) > 0 {
		batchScore.WithLabelValues(h.name).Observe(result.Mean())
	}
	slog.Debug("batch evaluated",
		"adapter", h.name,
		"total", result.Total,
		"valid", len(result.Scores),
		"mean", result.Mean(),
	)
	return result, nil
}

func (h *harness) run(ctx context.Context, ex dataset.Example, system, user string) (scored, error) {
	start := time.Now()
	resp, err := h.model.Complete(ctx, engine.Request{
		System:      system,
		User:        user,
		MaxTokens:   h.variant.maxTokens(),
		Temperature: h.task.Execution.Temperature,
	})
	elapsed := time.Since(start)
	modelCallDuration.WithLabelValues(h.name).Observe(elapsed.Seconds())
	if err != nil {
		return scored{}, err
	}
	res, err := h.variant.score(ctx, ex, resp.Text)
	if err != nil {
		return scored{}, err
	}
	res.output.Latency = elapsed
	if res.output.Input == nil {
		res.output.Input = ex.Inputs
	}
	return res, nil
}

// checkBatch rejects examples that lack a declared field before any model
// call is made.
func (h *harness) checkBatch(batch []dataset.Example) error {
	for i, ex := range batch {
		for _, f := range h.template.RequiredParams() {
			if _, ok := ex.Inputs[f]; !ok {
				return apperr.NewValidation(fmt.Sprintf("example %d: missing input field %q", i, f))
			}
		}
		for _, f := range h.task.OutputFields {
			if _, ok := ex.Expected[f]; !ok {
				return apperr.NewValidation(fmt.Sprintf("example %d: missing expected field %q", i, f))
			}
		}
	}
	return nil
}

func (h *harness) MakeReflectiveDataset(batch []dataset.Example, res *EvaluationResult) ([]reflective.Datum, error) {
	if res == nil {
		return nil, apperr.NewValidation("evaluation result is required")
	}
	if len(res.Outputs) != len(res.Scores) {
		return nil, apperr.NewValidation(fmt.Sprintf("result has %d outputs but %d scores", len(res.Outputs), len(res.Scores)))
	}

	items := make([]reflective.Item, 0, len(res.Outputs))
	for i, out := range res.Outputs {
		input := out.Input
		if batch != nil {
			if out.BatchIndex < 0 || out.BatchIndex >= len(batch) {
				return nil, apperr.NewValidation(fmt.Sprintf("output %d refers to batch index %d outside a batch of %d", i, out.BatchIndex, len(batch)))
			}
			input = batch[out.BatchIndex].Inputs
		}
		items = append(items, reflective.Item{
			BatchIndex: out.BatchIndex,
			Input:      input,
			Expected:   out.Expected,
			Generated:  out.Generated,
			Feedback:   out.Feedback,
			Score:      res.Scores[i],
		})
	}
	return reflective.Curate(items, h.curatorConfig()), nil
}

func (h *harness) curatorConfig() reflective.Config {
	r := h.task.Reflection
	cfg := reflective.Config{
		MaxPositiveExamples: r.MaxPositiveExamples,
		MaxPositiveFraction: r.MaxPositiveFraction,
		PerfectThreshold:    h.task.Scoring.Perfect(),
		MaxTextLength:       r.MaxTextLength,
		MaxContextLength:    r.MaxContextLength,
		ContextFields:       h.variant.contextFields(),
	}
	if h.variant.sanitize() || len(r.Substitutions) > 0 {
		subs := r.Substitutions
		if len(subs) == 0 {
			subs = reflective.DefaultSubstitutions
		}
		cfg.Sanitizer = reflective.NewSanitizer(subs)
	}
	return cfg
}
