package spec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/suite"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func LoadFromFile(path string) (*TaskSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task spec: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if s.Dataset != "" && !filepath.IsAbs(s.Dataset) {
		s.Dataset = filepath.Join(filepath.Dir(path), s.Dataset)
	}
	return s, nil
}

func Parse(data []byte) (*TaskSpec, error) {
	var s TaskSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, apperr.NewConfigWrap("", "parse task spec YAML", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks s and fills defaults. Every failure is an
// *apperr.ConfigError.
func Validate(s *TaskSpec) error {
	if err := validate.Struct(s); err != nil {
		return structError(err)
	}
	applyDefaults(s)

	switch s.Type {
	case Classifier:
		if len(s.InputFields) == 0 {
			return apperr.NewConfig("input_fields", "classifier needs an input field")
		}
		if len(s.OutputFields) != 1 {
			return apperr.NewConfig("output_fields", "classifier needs exactly one label field")
		}
		if len(s.ValidLabels) == 0 {
			return apperr.NewConfig("valid_labels", "classifier needs at least one valid label")
		}
	case Extractor:
		if len(s.InputFields) == 0 {
			return apperr.NewConfig("input_fields", "extractor needs an input field")
		}
		if len(s.OutputFields) == 0 {
			return apperr.NewConfig("output_fields", "extractor needs at least one required field")
		}
	}

	if s.Type != Classifier && len(s.ValidLabels) > 0 {
		return apperr.NewConfig("valid_labels", fmt.Sprintf("only used by classifier, not %s", s.Type))
	}
	if s.InputTemplate == "" {
		return apperr.NewConfig("input_template", "required when more than one input field is declared")
	}

	tmpl := suite.RequestTemplate{ID: s.Name, Text: s.InputTemplate}
	for _, p := range tmpl.RequiredParams() {
		if !slices.Contains(s.InputFields, p) {
			return apperr.NewConfig("input_template", fmt.Sprintf("placeholder %q is not an input field", p))
		}
	}
	for _, f := range s.OutputFields {
		if slices.Contains(s.InputFields, f) {
			return apperr.NewConfig("output_fields", fmt.Sprintf("%q is also an input field", f))
		}
	}
	return nil
}

func structError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.NewConfigWrap("", "invalid task spec", err)
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "TaskSpec.")
	switch fe.Tag() {
	case "required":
		return apperr.NewConfig(field, "is required")
	case "oneof":
		return apperr.NewConfig(field, fmt.Sprintf("%q is not one of [%s]", fmt.Sprint(fe.Value()), fe.Param()))
	default:
		return apperr.NewConfig(field, fmt.Sprintf("failed %q check (%v)", fe.Tag(), fe.Value()))
	}
}
