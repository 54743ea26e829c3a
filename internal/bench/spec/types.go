package spec

import "github.com/mberliner/reflexio/internal/bench/match"

type AdapterType string

const (
	Classifier AdapterType = "classifier"
	Extractor  AdapterType = "extractor"
	SQL        AdapterType = "sql"
	RAGJudge   AdapterType = "rag_judge"
)

type ListScoring string

const (
	FieldAverage  ListScoring = "field_average"
	PresenceCount ListScoring = "presence_count"
)

// TaskSpec is the declarative descriptor that selects and configures one
// adapter.
type TaskSpec struct {
	Name          string      `yaml:"name" json:"name" validate:"required"`
	Type          AdapterType `yaml:"type" json:"type" validate:"required,oneof=classifier extractor sql rag_judge"`
	Dataset       string      `yaml:"dataset,omitempty" json:"dataset,omitempty"`
	InputFields   []string    `yaml:"input_fields" json:"input_fields" validate:"dive,required"`
	OutputFields  []string    `yaml:"output_fields" json:"output_fields" validate:"dive,required"`
	InputTemplate string      `yaml:"input_template,omitempty" json:"input_template,omitempty"`
	ValidLabels   []string    `yaml:"valid_labels,omitempty" json:"valid_labels,omitempty" validate:"dive,required"`
	ListScoring   ListScoring `yaml:"list_scoring,omitempty" json:"list_scoring,omitempty" validate:"omitempty,oneof=field_average presence_count"`
	Scoring       Scoring     `yaml:"scoring" json:"scoring"`
	Reflection    Reflection  `yaml:"reflection" json:"reflection"`
	Execution     Execution   `yaml:"execution" json:"execution"`
	Models        Models      `yaml:"models" json:"models"`
}

// Scoring thresholds are pointers so an omitted value can take the default
// while an explicit 0 is rejected.
type Scoring struct {
	MatchMode        match.Mode `yaml:"match_mode" json:"match_mode" validate:"omitempty,oneof=exact normalized fuzzy"`
	FuzzyThreshold   *float64   `yaml:"fuzzy_threshold,omitempty" json:"fuzzy_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
	PerfectThreshold *float64   `yaml:"perfect_threshold,omitempty" json:"perfect_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// Fuzzy is the fuzzy match threshold, or the default when unset.
func (s Scoring) Fuzzy() float64 {
	if s.FuzzyThreshold == nil {
		return match.DefaultFuzzyThreshold
	}
	return *s.FuzzyThreshold
}

// Perfect is the score at or above which an example counts as a success.
func (s Scoring) Perfect() float64 {
	if s.PerfectThreshold == nil {
		return DefaultPerfectThreshold
	}
	return *s.PerfectThreshold
}

type Reflection struct {
	// MaxPositiveExamples nil means the quota follows the batch size.
	MaxPositiveExamples *int              `yaml:"max_positive_examples,omitempty" json:"max_positive_examples,omitempty" validate:"omitempty,gte=0"`
	MaxPositiveFraction float64           `yaml:"max_positive_fraction" json:"max_positive_fraction" validate:"gte=0,lte=1"`
	MaxTextLength       int               `yaml:"max_text_length" json:"max_text_length" validate:"gte=0"`
	MaxContextLength    int               `yaml:"max_context_length" json:"max_context_length" validate:"gte=0"`
	Substitutions       map[string]string `yaml:"substitutions,omitempty" json:"substitutions,omitempty"`
}

type Execution struct {
	NumThreads  int     `yaml:"num_threads" json:"num_threads" validate:"gte=0,lte=64"`
	Temperature float32 `yaml:"temperature" json:"temperature" validate:"gte=0,lte=2"`
}

// Models overrides the environment model settings for this task.
type Models struct {
	Task  ModelRef `yaml:"task" json:"task"`
	Judge ModelRef `yaml:"judge" json:"judge"`
}

type ModelRef struct {
	Model      string `yaml:"model,omitempty" json:"model,omitempty"`
	APIBase    string `yaml:"api_base,omitempty" json:"api_base,omitempty" validate:"omitempty,url"`
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty"`
}
