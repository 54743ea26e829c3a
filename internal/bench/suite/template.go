// Package suite renders example fields into the user content sent to a
// model.
package suite

import (
	"fmt"
	"regexp"
	"sort"
)

type RequestTemplate struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

type TemplateParams map[string]string

var placeholderRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render substitutes {{name}} placeholders. Every placeholder must have a
// value; an empty value is allowed.
func (t *RequestTemplate) Render(params TemplateParams) (string, error) {
	result := placeholderRegex.ReplaceAllStringFunc(t.Text, func(match string) string {
		key := match[2 : len(match)-2]
		if val, ok := params[key]; ok {
			return escapePlaceholders(val)
		}
		return match
	})

	missing := findMissingPlaceholders(result)
	if len(missing) > 0 {
		return "", fmt.Errorf("template %q missing params: %v", t.ID, missing)
	}

	return unescapePlaceholders(result), nil
}

func (t *RequestTemplate) RequiredParams() []string {
	seen := make(map[string]bool)
	var params []string

	matches := placeholderRegex.FindAllStringSubmatch(t.Text, -1)
	for _, m := range matches {
		if len(m) > 1 && !seen[m[1]] {
			seen[m[1]] = true
			params = append(params, m[1])
		}
	}

	return params
}

func (t *RequestTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template has no id")
	}
	if t.Text == "" {
		return fmt.Errorf("template %q has no text", t.ID)
	}
	return nil
}

func findMissingPlaceholders(s string) []string {
	matches := placeholderRegex.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var missing []string
	for _, m := range matches {
		if len(m) > 1 && !seen[m[1]] {
			seen[m[1]] = true
			missing = append(missing, m[1])
		}
	}
	return missing
}

// Values taken from examples may contain "{{x}}" literally; they are masked
// while checking for unresolved placeholders.
const (
	openMask  = "\x00{"
	closeMask = "\x00}"
)

func escapePlaceholders(s string) string {
	return placeholderRegex.ReplaceAllString(s, openMask+"$1"+closeMask)
}

func unescapePlaceholders(s string) string {
	return maskRegex.ReplaceAllString(s, "{{$1}}")
}

var maskRegex = regexp.MustCompile("\x00\\{(\\w+)\x00\\}")

type TemplateRegistry struct {
	templates map[string]*RequestTemplate
}

func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*RequestTemplate),
	}
}

func (r *TemplateRegistry) Register(t *RequestTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := r.templates[t.ID]; exists {
		return fmt.Errorf("template %q already registered", t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

func (r *TemplateRegistry) Get(id string) (*RequestTemplate, bool) {
	t, ok := r.templates[id]
	return t, ok
}

func (r *TemplateRegistry) Render(templateID string, params TemplateParams) (string, error) {
	t, ok := r.Get(templateID)
	if !ok {
		return "", fmt.Errorf("template %q not found", templateID)
	}
	return t.Render(params)
}

func (r *TemplateRegistry) List() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
