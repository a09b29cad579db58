package serializer

import (
	"fmt"
	"reflect"
)

// Options are the modifiers every field carries.
type Options struct {
	// Readonly fields are read from DTOs but never written back.
	Readonly bool
	// Many fields convert each element of a sequence.
	Many bool
	// Optional fields pass nil through without converting it.
	Optional bool
}

// Field converts one value between its wire and model forms. A field always
// describes a single element; Many and Optional are applied by ConvertFromDTO
// and ConvertToDTO.
type Field interface {
	FromDTO(value any) (any, error)
	ToDTO(value any) (any, error)
	Options() Options
}

// FieldOption configures a field at construction.
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	options Options
	choices []any
}

// Readonly marks a field as server assigned.
func Readonly() FieldOption {
	return func(c *fieldConfig) { c.options.Readonly = true }
}

// Many marks a field as a sequence of values.
func Many() FieldOption {
	return func(c *fieldConfig) { c.options.Many = true }
}

// Optional marks a field as nullable.
func Optional() FieldOption {
	return func(c *fieldConfig) { c.options.Optional = true }
}

// WithOptions sets all modifiers at once.
func WithOptions(options Options) FieldOption {
	return func(c *fieldConfig) { c.options = options }
}

// WithChoices restricts an Enum field to the given values. Other fields
// ignore it.
func WithChoices(choices ...any) FieldOption {
	return func(c *fieldConfig) { c.choices = append(c.choices, choices...) }
}

func newConfig(opts []FieldOption) fieldConfig {
	var cfg fieldConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// ConvertFromDTO applies field to a wire value, honouring its modifiers.
func ConvertFromDTO(field Field, value any) (any, error) {
	return convert(field.Options(), field.FromDTO, value)
}

// ConvertToDTO applies field to a model value, honouring its modifiers.
func ConvertToDTO(field Field, value any) (any, error) {
	return convert(field.Options(), field.ToDTO, value)
}

func convert(options Options, one func(any) (any, error), value any) (any, error) {
	if options.Optional && isNil(value) {
		return nil, nil
	}

	if !options.Many {
		return one(value)
	}

	rv := reflect.ValueOf(value)
	if value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%w: got %T", ErrNotSequence, value)
	}

	out := make([]any, 0, rv.Len())

	for i := range rv.Len() {
		converted, err := one(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}

		out = append(out, converted)
	}

	return out, nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
