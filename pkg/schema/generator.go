package schema

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// JSONSchema represents a JSON Schema document
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 any                    `json:"type,omitempty"`
	Format               string                 `json:"format,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	Enum                 []any                  `json:"enum,omitempty"`
}

const (
	schemaRef = "https://json-schema.org/draft/2020-12/schema"
	idBase    = "https://schemas.searchbench.dev/"
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	durationType      = reflect.TypeOf(time.Duration(0))
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

type Option func(*Generator)

// WithTagName reads field names from a different struct tag, e.g. "yaml".
func WithTagName(tag string) Option {
	return func(g *Generator) {
		g.tagName = tag
	}
}

// Generator generates JSON schemas from Go structs. A field is required
// unless its tag carries omitempty or it is a pointer.
type Generator struct {
	tagName string
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{tagName: "json"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSchema generates a JSON schema from a Go type
func (g *Generator) GenerateSchema(t reflect.Type) (*JSONSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	s, err := g.generateSchemaForType(t)
	if err != nil {
		return nil, err
	}

	s.Schema = schemaRef
	s.Title = t.Name()
	s.ID = idBase + strings.ToLower(t.Name())
	return s, nil
}

// GenerateJSONSchema generates a JSON schema as an indented JSON string.
func (g *Generator) GenerateJSONSchema(v any) (string, error) {
	s, err := g.GenerateSchema(reflect.TypeOf(v))
	if err != nil {
		return "", err
	}

	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}

	return string(jsonBytes), nil
}

func (g *Generator) generateSchemaForType(t reflect.Type) (*JSONSchema, error) {
	if t.Kind() == reflect.Ptr {
		inner, err := g.generateSchemaForType(t.Elem())
		if err != nil {
			return nil, err
		}
		if name, ok := inner.Type.(string); ok {
			inner.Type = []string{name, "null"}
		}
		return inner, nil
	}

	switch {
	case t == timeType:
		return &JSONSchema{Type: "string", Format: "date-time"}, nil
	case t == durationType && g.tagName != "json":
		return &JSONSchema{Type: "string", Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`}, nil
	case t.Implements(textMarshalerType):
		s := &JSONSchema{Type: "string"}
		if t.PkgPath() == "github.com/google/uuid" {
			s.Format = "uuid"
		}
		return s, nil
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
			return nil, fmt.Errorf("unsupported map key type: %s", t.Key())
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
	s := &JSONSchema{
		Type:       "object",
		Properties: make(map[string]*JSONSchema),
	}

	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitempty, skip := g.fieldName(field)
		if skip {
			continue
		}

		fieldSchema, err := g.generateSchemaForType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to generate schema for field %s: %w", field.Name, err)
		}
		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema.Description = desc
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			for _, e := range strings.Split(enum, "|") {
				fieldSchema.Enum = append(fieldSchema.Enum, e)
			}
		}

		s.Properties[name] = fieldSchema
		if !omitempty && field.Type.Kind() != reflect.Ptr {
			required = append(required, name)
		}
	}

	s.Required = required
	return s, nil
}

func (g *Generator) fieldName(field reflect.StructField) (name string, omitempty, skip bool) {
	tag := field.Tag.Get(g.tagName)
	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = strings.ToLower(field.Name[:1]) + field.Name[1:]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}
