package spec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/match"
)

func TestParse(t *testing.T) {
	t.Run("classifier with defaults", func(t *testing.T) {
		yaml := `
name: email_urgency
type: classifier
input_fields: [text]
output_fields: [urgency]
valid_labels: [urgent, normal, low]
`
		s, err := Parse([]byte(yaml))
		require.NoError(t, err)
		assert.Equal(t, Classifier, s.Type)
		assert.Equal(t, match.Exact, s.Scoring.MatchMode)
		require.NotNil(t, s.Scoring.FuzzyThreshold)
		assert.Equal(t, match.DefaultFuzzyThreshold, *s.Scoring.FuzzyThreshold)
		assert.Equal(t, 1.0, s.Scoring.Perfect())
		assert.Equal(t, "{{text}}", s.InputTemplate)
		assert.Equal(t, 1, s.Execution.NumThreads)
		assert.Equal(t, 1000, s.Reflection.MaxTextLength)
		assert.Nil(t, s.Reflection.MaxPositiveExamples)
	})

	t.Run("extractor with explicit scoring", func(t *testing.T) {
		yaml := `
name: cv_extraction
type: extractor
input_fields: [text]
output_fields: [name, email]
list_scoring: presence_count
scoring:
  match_mode: fuzzy
  fuzzy_threshold: 0.9
reflection:
  max_positive_examples: 0
execution:
  num_threads: 4
`
		s, err := Parse([]byte(yaml))
		require.NoError(t, err)
		assert.Equal(t, match.Fuzzy, s.Scoring.MatchMode)
		assert.Equal(t, 0.9, s.Scoring.Fuzzy())
		assert.Equal(t, PresenceCount, s.ListScoring)
		require.NotNil(t, s.Reflection.MaxPositiveExamples)
		assert.Equal(t, 0, *s.Reflection.MaxPositiveExamples)
		assert.Equal(t, 4, s.Execution.NumThreads)
	})

	t.Run("sql gets fixed fields", func(t *testing.T) {
		s, err := Parse([]byte("name: text_to_sql\ntype: sql\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"question", "schema"}, s.InputFields)
		assert.Equal(t, []string{"expected_sql"}, s.OutputFields)
		assert.Equal(t, match.Normalized, s.Scoring.MatchMode)
		assert.Contains(t, s.InputTemplate, "{{schema}}")
	})

	t.Run("rag judge", func(t *testing.T) {
		yaml := `
name: policy_rag
type: rag_judge
models:
  judge:
    model: azure/gpt-4o
`
		s, err := Parse([]byte(yaml))
		require.NoError(t, err)
		assert.Equal(t, []string{"answer"}, s.OutputFields)
		assert.Equal(t, "azure/gpt-4o", s.Models.Judge.Model)
	})
}

func TestParse_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		field   string
		message string
	}{
		{"missing name", "type: sql\n", "name", "is required"},
		{"unknown type", "name: x\ntype: ranking\n", "type", "not one of"},
		{"invalid match mode", "name: x\ntype: sql\nscoring:\n  match_mode: loose\n", "scoring.match_mode", "not one of"},
		{"threshold out of range", "name: x\ntype: sql\nscoring:\n  fuzzy_threshold: 1.5\n", "scoring.fuzzy_threshold", "lte"},
		{"zero fuzzy threshold", "name: x\ntype: sql\nscoring:\n  fuzzy_threshold: 0\n", "scoring.fuzzy_threshold", "gt"},
		{"zero perfect threshold", "name: x\ntype: sql\nscoring:\n  perfect_threshold: 0\n", "scoring.perfect_threshold", "gt"},
		{"negative quota", "name: x\ntype: sql\nreflection:\n  max_positive_examples: -1\n", "reflection.max_positive_examples", "gte"},
		{"classifier without labels", "name: x\ntype: classifier\ninput_fields: [text]\noutput_fields: [label]\n", "valid_labels", "at least one"},
		{"classifier with two label fields", "name: x\ntype: classifier\ninput_fields: [text]\noutput_fields: [a, b]\nvalid_labels: [y]\n", "output_fields", "exactly one"},
		{"extractor without fields", "name: x\ntype: extractor\ninput_fields: [text]\n", "output_fields", "required field"},
		{"labels on extractor", "name: x\ntype: extractor\ninput_fields: [text]\noutput_fields: [a]\nvalid_labels: [y]\n", "valid_labels", "only used by classifier"},
		{"template references unknown field", "name: x\ntype: extractor\ninput_fields: [text]\noutput_fields: [a]\ninput_template: \"{{body}}\"\n", "input_template", "not an input field"},
		{"multiple inputs without template", "name: x\ntype: extractor\ninput_fields: [a, b]\noutput_fields: [c]\n", "input_template", "required"},
		{"output overlaps input", "name: x\ntype: extractor\ninput_fields: [text]\noutput_fields: [text]\n", "output_fields", "also an input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var ce *apperr.ConfigError
			require.True(t, errors.As(err, &ce), "want ConfigError, got %T: %v", err, err)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Error(), tt.message)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("name: [unclosed"))

	var ce *apperr.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestLoadFromFile_ResolvesDatasetPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "task.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: q\ntype: sql\ndataset: data/sql.csv\n"), 0644))

	s, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "sql.csv"), s.Dataset)

	_, err = LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
