package reflective

import (
	"maps"
	"slices"
	"strings"
)

const MaxFeedbackLength = 500

// DefaultSubstitutions soften wording that reflection endpoints with
// content moderation tend to reject.
var DefaultSubstitutions = map[string]string{
	"ERROR:":        "Incorrect case:",
	"hallucination": "unverifiable information",
	"hallucinated":  "unverifiable",
	"error":         "issue",
}

type Sanitizer struct {
	replacer *strings.Replacer
}

// NewSanitizer applies subs, longest keys first so overlapping keys behave
// predictably. nil subs means DefaultSubstitutions.
func NewSanitizer(subs map[string]string) *Sanitizer {
	if subs == nil {
		subs = DefaultSubstitutions
	}
	keys := slices.Collect(maps.Keys(subs))
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, subs[k])
	}
	return &Sanitizer{replacer: strings.NewReplacer(pairs...)}
}

func (s *Sanitizer) Text(text string) string {
	if text == "" {
		return text
	}
	return s.replacer.Replace(text)
}

// Feedback sanitizes and caps feedback at MaxFeedbackLength characters.
func (s *Sanitizer) Feedback(text string) string {
	out := s.Text(text)
	r := []rune(out)
	if len(r) > MaxFeedbackLength {
		out = string(r[:MaxFeedbackLength-3]) + "..."
	}
	return out
}

func (s *Sanitizer) Datum(d Datum) Datum {
	input := make(map[string]string, len(d.Input))
	for k, v := range d.Input {
		input[k] = s.Text(v)
	}
	d.Input = input
	d.ExpectedOutput = s.Text(d.ExpectedOutput)
	d.GeneratedOutput = s.Text(d.GeneratedOutput)
	d.Feedback = s.Feedback(d.Feedback)
	return d
}
