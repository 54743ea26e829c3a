package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/match"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

const classifierMaxTokens = 50

type classifier struct {
	field     string
	labels    []string
	mode      match.Mode
	threshold float64
}

// NewClassifier builds an adapter that asks for a single label and scores
// 1 when it matches the expected label.
func NewClassifier(task *spec.TaskSpec, model engine.Model) (Adapter, error) {
	h, err := newHarness(task, spec.Classifier, model)
	if err != nil {
		return nil, err
	}
	h.variant = &classifier{
		field:     h.task.OutputFields[0],
		labels:    h.task.ValidLabels,
		mode:      h.task.Scoring.MatchMode,
		threshold: h.task.Scoring.Fuzzy(),
	}
	return h, nil
}

func (c *classifier) maxTokens() int          { return classifierMaxTokens }
func (c *classifier) contextFields() []string { return nil }
func (c *classifier) sanitize() bool          { return false }

func (c *classifier) score(_ context.Context, ex dataset.Example, response string) (scored, error) {
	expected := ex.Expect(c.field)
	predicted := strings.ToLower(strings.TrimSpace(response))

	out := Output{
		Expected:  expected,
		Generated: predicted,
	}

	label, ok := c.label(predicted)
	if !ok {
		out.FormatFailure = true
		out.Feedback = fmt.Sprintf("Invalid label '%s'. Valid labels are: %s. Expected '%s'.",
			predicted, strings.Join(c.labels, ", "), expected)
		return scored{output: out}, nil
	}

	out.Parsed = map[string]any{c.field: label}
	if match.Match(expected, label, c.mode, c.threshold) {
		out.Feedback = fmt.Sprintf("Correct classification: '%s'.", label)
		return scored{output: out, score: 1}, nil
	}
	out.Feedback = fmt.Sprintf("Incorrect classification. Expected '%s' but got '%s'.", expected, label)
	return scored{output: out}, nil
}

// label resolves predicted to one of the valid labels, ignoring case,
// punctuation and surrounding whitespace.
func (c *classifier) label(predicted string) (string, bool) {
	norm := match.Normalize(predicted)
	for _, l := range c.labels {
		if match.Normalize(l) == norm {
			return l, true
		}
	}
	return "", false
}
