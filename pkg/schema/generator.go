// Package schema derives JSON Schema documents from Go structs. Property
// names come from a struct tag (json by default) and constraints from
// go-playground/validator tags.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// JSONSchema represents a JSON Schema document
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Format               string                 `json:"format,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	Enum                 []any                  `json:"enum,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	ExclusiveMinimum     *float64               `json:"exclusiveMinimum,omitempty"`
	Maximum              *float64               `json:"maximum,omitempty"`
	MinLength            *int                   `json:"minLength,omitempty"`
	MinItems             *int                   `json:"minItems,omitempty"`
}

const schemaRef = "https://json-schema.org/draft/2020-12/schema"

// Generator generates JSON schemas from Go structs
type Generator struct {
	nameTag string
	baseID  string
}

type Option func(*Generator)

// WithNameTag reads property names from tag, e.g. "yaml" for descriptors
// that are written as YAML.
func WithNameTag(tag string) Option {
	return func(g *Generator) { g.nameTag = tag }
}

// WithBaseID sets the URL prefix of the root schema's $id.
func WithBaseID(base string) Option {
	return func(g *Generator) { g.baseID = strings.TrimSuffix(base, "/") }
}

// NewGenerator creates a new schema generator
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{nameTag: "json"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSchema generates a JSON schema from a Go type
func (g *Generator) GenerateSchema(t reflect.Type) (*JSONSchema, error) {
	s, err := g.generateSchemaForType(t)
	if err != nil {
		return nil, err
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.Schema = schemaRef
	s.Title = t.Name()
	if g.baseID != "" && t.Name() != "" {
		s.ID = fmt.Sprintf("%s/%s", g.baseID, strings.ToLower(t.Name()))
	}
	return s, nil
}

// GenerateJSONSchema renders the schema of v's type as indented JSON.
func (g *Generator) GenerateJSONSchema(v any) ([]byte, error) {
	schema, err := g.GenerateSchema(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return out, nil
}

func (g *Generator) generateSchemaForType(t reflect.Type) (*JSONSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return g.generateStructSchema(t)
	case reflect.Slice, reflect.Array:
		items, err := g.generateSchemaForType(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("failed to generate schema for array items: %w", err)
		}
		return &JSONSchema{Type: "array", Items: items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type: %s", t.Key().Kind())
		}
		values, err := g.generateSchemaForType(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("failed to generate schema for map values: %w", err)
		}
		return &JSONSchema{Type: "object", AdditionalProperties: values}, nil
	case reflect.String:
		return &JSONSchema{Type: "string"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &JSONSchema{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &JSONSchema{Type: "number"}, nil
	case reflect.Bool:
		return &JSONSchema{Type: "boolean"}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", t.Kind())
	}
}

func (g *Generator) generateStructSchema(t reflect.Type) (*JSONSchema, error) {
	schema := &JSONSchema{
		Type:       "object",
		Properties: make(map[string]*JSONSchema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := g.fieldName(field)
		if name == "" {
			continue
		}

		fieldSchema, err := g.generateSchemaForType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to generate schema for field %s: %w", field.Name, err)
		}
		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema.Description = desc
		}

		if applyValidateTag(field.Tag.Get("validate"), fieldSchema) {
			schema.Required = append(schema.Required, name)
		}
		schema.Properties[name] = fieldSchema
	}

	return schema, nil
}

func (g *Generator) fieldName(field reflect.StructField) string {
	tag := field.Tag.Get(g.nameTag)
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return strings.ToLower(field.Name[:1]) + field.Name[1:]
	}
	return name
}

// applyValidateTag maps validator rules onto s and reports whether the field
// is required. Rules after "dive" apply to the items of a list or map.
func applyValidateTag(tag string, s *JSONSchema) bool {
	if tag == "" {
		return false
	}

	rules, itemRules, dive := strings.Cut(tag, ",dive")
	if strings.HasPrefix(tag, "dive") {
		rules, itemRules, dive = "", strings.TrimPrefix(tag, "dive"), true
	}
	if dive {
		elem := s.Items
		if elem == nil {
			elem = s.AdditionalProperties
		}
		if elem != nil {
			applyValidateTag(strings.TrimPrefix(itemRules, ","), elem)
		}
	}

	required := false
	for _, rule := range strings.Split(rules, ",") {
		key, val, _ := strings.Cut(strings.TrimSpace(rule), "=")
		switch key {
		case "required":
			required = true
			if s.Type == "string" {
				s.MinLength = intPtr(1)
			}
		case "oneof":
			for _, v := range strings.Fields(val) {
				s.Enum = append(s.Enum, v)
			}
		case "gte", "min":
			n, err := strconv.ParseFloat(val, 64)
			if err != nil {
				continue
			}
			switch s.Type {
			case "array":
				s.MinItems = intPtr(int(n))
			case "string":
				s.MinLength = intPtr(int(n))
			default:
				s.Minimum = &n
			}
		case "gt":
			if n, err := strconv.ParseFloat(val, 64); err == nil && s.Type != "array" && s.Type != "string" {
				s.ExclusiveMinimum = &n
			}
		case "lte", "max":
			if n, err := strconv.ParseFloat(val, 64); err == nil && s.Type != "array" && s.Type != "string" {
				s.Maximum = &n
			}
		case "url":
			s.Format = "uri"
		}
	}
	return required
}

func intPtr(n int) *int { return &n }
