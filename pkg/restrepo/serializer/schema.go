package serializer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Field type names accepted in a Schema.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeEnum    = "enum"
	TypeJSON    = "json"
	TypeNested  = "nested"
)

// Schema is the declarative form of a ModelSerializer:
//
//	name: user
//	fields:
//	  id: {type: number, readonly: true}
//	  joined: {type: date}
//	  role: {type: enum, choices: [admin, member]}
//	  groups: {type: nested, many: true, fields: {name: {type: string}}}
type Schema struct {
	Name   string                 `yaml:"name"`
	Fields map[string]FieldSchema `yaml:"fields"`
}

// FieldSchema describes one field of a Schema.
type FieldSchema struct {
	Type     string                 `yaml:"type"`
	Readonly bool                   `yaml:"readonly"`
	Many     bool                   `yaml:"many"`
	Optional bool                   `yaml:"optional"`
	Choices  []any                  `yaml:"choices"`
	Fields   map[string]FieldSchema `yaml:"fields"`
}

// ParseSchema builds a ModelSerializer from a YAML (or JSON) schema document.
func ParseSchema(data []byte, opts ...Option) (*ModelSerializer, error) {
	var schema Schema

	err := yaml.Unmarshal(data, &schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaInvalid, err)
	}

	return schema.Build(opts...)
}

// LoadSchema reads and parses a schema file.
func LoadSchema(path string, opts ...Option) (*ModelSerializer, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	return ParseSchema(data, opts...)
}

// Build turns the schema into a ModelSerializer. opts apply to nested
// serializers too.
func (s Schema) Build(opts ...Option) (*ModelSerializer, error) {
	if s.Name == "" {
		s.Name = "schema"
	}

	fields, err := buildFields(s.Name, s.Fields, opts)
	if err != nil {
		return nil, err
	}

	return NewModelSerializer(s.Name, fields, opts...), nil
}

func buildFields(path string, specs map[string]FieldSchema, opts []Option) (Fields, error) {
	fields := make(Fields, len(specs))

	for key, spec := range specs {
		field, err := spec.build(path+"."+key, opts)
		if err != nil {
			return nil, err
		}

		fields[key] = field
	}

	return fields, nil
}

func (f FieldSchema) build(path string, opts []Option) (Field, error) {
	fieldOpts := []FieldOption{WithOptions(Options{
		Readonly: f.Readonly,
		Many:     f.Many,
		Optional: f.Optional,
	})}

	switch f.Type {
	case TypeString, "":
		return String(fieldOpts...), nil
	case TypeNumber:
		return Number(fieldOpts...), nil
	case TypeBoolean:
		return Boolean(fieldOpts...), nil
	case TypeDate:
		return Date(fieldOpts...), nil
	case TypeEnum:
		return Enum(append(fieldOpts, WithChoices(f.Choices...))...), nil
	case TypeJSON:
		return JSON(fieldOpts...), nil
	case TypeNested:
		if len(f.Fields) == 0 {
			return nil, fmt.Errorf("%w: %s: nested field has no fields", ErrSchemaInvalid, path)
		}

		fields, err := buildFields(path, f.Fields, opts)
		if err != nil {
			return nil, err
		}

		return Nested(NewModelSerializer(path, fields, opts...), fieldOpts...), nil
	}

	return nil, fmt.Errorf("%w: %s: %q", ErrUnknownFieldType, path, f.Type)
}
