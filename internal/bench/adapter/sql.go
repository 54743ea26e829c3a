package adapter

import (
	"context"
	"regexp"
	"strings"

	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/match"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

const sqlMaxTokens = 200

var sqlFence = regexp.MustCompile("(?i)```sql|```")

type sqlGenerator struct {
	field     string
	mode      match.Mode
	threshold float64
}

// NewSQL builds an adapter that scores generated SQL against a reference
// query after textual normalization. Two semantically equal queries written
// differently still score 0.
func NewSQL(task *spec.TaskSpec, model engine.Model) (Adapter, error) {
	h, err := newHarness(task, spec.SQL, model)
	if err != nil {
		return nil, err
	}
	h.variant = &sqlGenerator{
		field:     h.task.OutputFields[0],
		mode:      h.task.Scoring.MatchMode,
		threshold: h.task.Scoring.Fuzzy(),
	}
	return h, nil
}

func (s *sqlGenerator) maxTokens() int          { return sqlMaxTokens }
func (s *sqlGenerator) contextFields() []string { return []string{"schema"} }
func (s *sqlGenerator) sanitize() bool          { return false }

func (s *sqlGenerator) score(_ context.Context, ex dataset.Example, response string) (scored, error) {
	expected := ex.Expect(s.field)
	generated := CleanSQL(response)
	out := Output{
		Expected:  expected,
		Generated: generated,
	}

	if s.equal(expected, generated) {
		out.Feedback = "Correct SQL. The query matches the reference."
		return scored{output: out, score: 1}, nil
	}
	out.Feedback = "Incorrect SQL. Expected:\n" + expected + "\nGot:\n" + generated
	return scored{output: out}, nil
}

func (s *sqlGenerator) equal(expected, generated string) bool {
	a, b := NormalizeSQL(expected), NormalizeSQL(generated)
	switch s.mode {
	case match.Exact:
		return match.Match(expected, generated, match.Exact, s.threshold)
	case match.Fuzzy:
		return a == b || match.Ratio(a, b) >= s.threshold
	default:
		return a == b
	}
}

// CleanSQL strips markdown code fences around a generated query.
func CleanSQL(s string) string {
	return strings.TrimSpace(sqlFence.ReplaceAllString(s, ""))
}

// NormalizeSQL lowercases s, collapses whitespace and drops trailing
// semicolons. Punctuation is kept.
func NormalizeSQL(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, "; \t\n")
	return strings.Join(strings.Fields(s), " ")
}
