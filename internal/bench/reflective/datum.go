// Package reflective builds the bounded feedback set handed to the
// optimizer's reflection step.
package reflective

type Kind string

const (
	Negative Kind = "negative"
	Positive Kind = "positive"
)

// Item is one scored example as seen by the curator.
type Item struct {
	BatchIndex int
	Input      map[string]string
	Expected   string
	Generated  string
	// Feedback explains the score; for positives it says what went right.
	Feedback string
	Score    float64
}

type Datum struct {
	BatchIndex      int               `json:"batch_index" yaml:"batch_index"`
	Input           map[string]string `json:"input" yaml:"input"`
	ExpectedOutput  string            `json:"expected_output" yaml:"expected_output"`
	GeneratedOutput string            `json:"generated_output" yaml:"generated_output"`
	Feedback        string            `json:"feedback" yaml:"feedback"`
	Score           float64           `json:"score" yaml:"score"`
	Kind            Kind              `json:"kind" yaml:"kind"`
}

// Count returns the number of negatives and positives in ds.
func Count(ds []Datum) (negatives, positives int) {
	for _, d := range ds {
		if d.Kind == Positive {
			positives++
		} else {
			negatives++
		}
	}
	return negatives, positives
}
