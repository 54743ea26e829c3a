package spec

import (
	"github.com/mberliner/reflexio/internal/bench/match"
	"github.com/mberliner/reflexio/internal/bench/suite"
)

const (
	DefaultPerfectThreshold    = 1.0
	DefaultMaxPositiveFraction = 0.2
	DefaultMaxTextLength       = 1000
	DefaultMaxContextLength    = 1500
	DefaultNumThreads          = 1
)

var defaultMatchModes = map[AdapterType]match.Mode{
	Classifier: match.Exact,
	Extractor:  match.Normalized,
	SQL:        match.Normalized,
}

// Fixed field contracts for adapters whose inputs are not free-form.
var fixedFields = map[AdapterType]struct{ inputs, outputs []string }{
	SQL:      {inputs: []string{"question", "schema"}, outputs: []string{"expected_sql"}},
	RAGJudge: {inputs: []string{"question", "context"}, outputs: []string{"answer"}},
}

func applyDefaults(s *TaskSpec) {
	if s.Scoring.MatchMode == "" {
		s.Scoring.MatchMode = defaultMatchModes[s.Type]
	}
	if s.Scoring.FuzzyThreshold == nil {
		v := match.DefaultFuzzyThreshold
		s.Scoring.FuzzyThreshold = &v
	}
	if s.Scoring.PerfectThreshold == nil {
		v := DefaultPerfectThreshold
		s.Scoring.PerfectThreshold = &v
	}
	if s.Reflection.MaxPositiveFraction == 0 {
		s.Reflection.MaxPositiveFraction = DefaultMaxPositiveFraction
	}
	if s.Reflection.MaxTextLength == 0 {
		s.Reflection.MaxTextLength = DefaultMaxTextLength
	}
	if s.Reflection.MaxContextLength == 0 {
		s.Reflection.MaxContextLength = DefaultMaxContextLength
	}
	if s.Execution.NumThreads == 0 {
		s.Execution.NumThreads = DefaultNumThreads
	}
	if s.ListScoring == "" && s.Type == Extractor {
		s.ListScoring = FieldAverage
	}
	if f, ok := fixedFields[s.Type]; ok {
		if len(s.InputFields) == 0 {
			s.InputFields = f.inputs
		}
		if len(s.OutputFields) == 0 {
			s.OutputFields = f.outputs
		}
	}
	if s.InputTemplate == "" {
		s.InputTemplate = defaultTemplate(s)
	}
}

// Classifier and extractor read a single free-text input by default. SQL
// and RAG tasks use the built-in templates.
func defaultTemplate(s *TaskSpec) string {
	switch s.Type {
	case Classifier, Extractor:
		if len(s.InputFields) == 1 {
			return "{{" + s.InputFields[0] + "}}"
		}
	case SQL, RAGJudge:
		if t, ok := suite.Defaults().Get(string(s.Type)); ok {
			return t.Text
		}
	}
	return ""
}
