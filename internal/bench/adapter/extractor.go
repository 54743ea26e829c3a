package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/match"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

const extractorMaxTokens = 300

type extractor struct {
	fields    []string
	mode      match.Mode
	threshold float64
	lists     spec.ListScoring
}

// NewExtractor builds an adapter that asks for a JSON object and scores the
// share of required fields extracted correctly.
func NewExtractor(task *spec.TaskSpec, model engine.Model) (Adapter, error) {
	h, err := newHarness(task, spec.Extractor, model)
	if err != nil {
		return nil, err
	}
	h.variant = &extractor{
		fields:    h.task.OutputFields,
		mode:      h.task.Scoring.MatchMode,
		threshold: h.task.Scoring.Fuzzy(),
		lists:     h.task.ListScoring,
	}
	return h, nil
}

func (e *extractor) maxTokens() int          { return extractorMaxTokens }
func (e *extractor) contextFields() []string { return nil }
func (e *extractor) sanitize() bool          { return false }

func (e *extractor) score(_ context.Context, ex dataset.Example, response string) (scored, error) {
	expected := make(map[string]string, len(e.fields))
	for _, f := range e.fields {
		expected[f] = ex.Expect(f)
	}

	parsed, ok := ParseJSONObject(response)
	out := Output{
		Expected:  compactJSON(expected),
		Generated: strings.TrimSpace(response),
		Parsed:    parsed,
	}
	if !ok {
		out.FormatFailure = true
		out.Feedback = "Response is not a JSON object. Return only a JSON object with the fields: " +
			strings.Join(e.fields, ", ") + "."
		for _, f := range e.fields {
			out.Fields = append(out.Fields, FieldComparison{Field: f, Expected: expected[f]})
		}
		return scored{output: out}, nil
	}
	out.Generated = compactJSON(parsed)

	var total float64
	for _, f := range e.fields {
		cmp := e.compare(f, expected[f], parsed)
		total += cmp.Score
		out.Fields = append(out.Fields, cmp)
	}
	score := total / float64(len(e.fields))
	out.Feedback = extractionFeedback(out.Fields)
	return scored{output: out, score: score}, nil
}

func (e *extractor) compare(field, expected string, parsed map[string]any) FieldComparison {
	raw, present := parsed[field]
	present = present && raw != nil
	got := stringify(raw)
	cmp := FieldComparison{Field: field, Expected: expected, Got: got, Present: present}
	if !present {
		return cmp
	}

	// An empty expected list has nothing to count; it is compared as text.
	if want := splitItems(expected); e.lists == spec.PresenceCount && isList(expected, raw) && len(want) > 0 {
		have := listItems(raw)
		matched := 0
		for _, w := range want {
			for _, g := range have {
				if match.Match(w, g, e.mode, e.threshold) {
					matched++
					break
				}
			}
		}
		cmp.Score = 0.5 + 0.5*float64(matched)/float64(len(want))
		cmp.Correct = matched == len(want)
		return cmp
	}

	cmp.Correct = match.Match(expected, got, e.mode, e.threshold)
	if cmp.Correct {
		cmp.Score = 1
	}
	return cmp
}

func extractionFeedback(fields []FieldComparison) string {
	var wrong, right []string
	for _, f := range fields {
		if f.Correct {
			right = append(right, fmt.Sprintf("'%s': '%s'", f.Field, f.Got))
			continue
		}
		got := f.Got
		if !f.Present {
			got = "<missing>"
		}
		wrong = append(wrong, fmt.Sprintf("'%s': exp='%s', got='%s'", f.Field, f.Expected, got))
	}
	if len(wrong) == 0 {
		return "Perfect extraction. Correct fields: " + strings.Join(right, ", ") + "."
	}
	return "Errors: " + strings.Join(wrong, "; ") + "."
}

// ParseJSONObject reads a JSON object from s. When s is not a bare object
// the first balanced {...} span that decodes is used. A response without
// one yields an empty object and false.
func ParseJSONObject(s string) (map[string]any, bool) {
	var obj map[string]any
	s = strings.TrimSpace(s)
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj != nil {
		return obj, true
	}
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end := balancedEnd(s, start); end > start {
			if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err == nil && obj != nil {
				return obj, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return map[string]any{}, false
}

// balancedEnd returns the index of the brace closing s[start], skipping
// braces inside JSON strings, or -1.
func balancedEnd(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		return strings.Join(listItems(t), ", ")
	default:
		return compactJSON(t)
	}
}

func isList(expected string, got any) bool {
	if _, ok := got.([]any); ok {
		return true
	}
	return strings.ContainsAny(expected, ",;")
}

func listItems(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return splitItems(stringify(v))
	}
	items := make([]string, 0, len(arr))
	for _, it := range arr {
		if s := strings.TrimSpace(stringify(it)); s != "" {
			items = append(items, s)
		}
	}
	return items
}

func splitItems(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
