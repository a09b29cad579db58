package serializer

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/fivetwenty-io/restrepo/internal/coerce"
	"github.com/fivetwenty-io/restrepo/internal/constants"
)

type base struct {
	options Options
}

func (b base) Options() Options {
	return b.options
}

type stringField struct{ base }

// String coerces any scalar to its string form. Nil becomes "".
func String(opts ...FieldOption) Field {
	return stringField{base{newConfig(opts).options}}
}

func (stringField) FromDTO(value any) (any, error) { return toString(value) }
func (stringField) ToDTO(value any) (any, error)   { return toString(value) }

func toString(value any) (any, error) {
	if s, ok := value.(fmt.Stringer); ok && !isNil(value) {
		return s.String(), nil
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return nil, fmt.Errorf("converting %T to string: %w", value, err)
	}

	return s, nil
}

type numberField struct{ base }

// Number coerces numeric strings, numbers and booleans to float64.
func Number(opts ...FieldOption) Field {
	return numberField{base{newConfig(opts).options}}
}

func (numberField) FromDTO(value any) (any, error) { return toNumber(value) }
func (numberField) ToDTO(value any) (any, error)   { return toNumber(value) }

func toNumber(value any) (any, error) {
	if str, ok := value.(string); ok {
		value = strings.TrimSpace(str)
		if value == "" {
			return float64(0), nil
		}
	}

	f, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, value)
	}

	return f, nil
}

type booleanField struct{ base }

// Boolean coerces by truthiness: nil, false, zero, NaN and "" are false,
// everything else (including the string "false") is true.
func Boolean(opts ...FieldOption) Field {
	return booleanField{base{newConfig(opts).options}}
}

func (booleanField) FromDTO(value any) (any, error) { return coerce.Truthy(value), nil }
func (booleanField) ToDTO(value any) (any, error)   { return coerce.Truthy(value), nil }

type dateField struct{ base }

// Date parses ISO-8601 strings into time.Time and writes UTC timestamps with
// millisecond precision.
func Date(opts ...FieldOption) Field {
	return dateField{base{newConfig(opts).options}}
}

func (dateField) FromDTO(value any) (any, error) {
	return toTime(value)
}

func (dateField) ToDTO(value any) (any, error) {
	t, err := toTime(value)
	if err != nil {
		return nil, err
	}

	return t.UTC().Format(constants.ISODateLayout), nil
}

// dateLayouts are the ISO-8601 forms DRF emits, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v != nil {
			return *v, nil
		}
	case string:
		for _, layout := range dateLayouts {
			// zone-less layouts parse as UTC
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}

		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, v)
	}

	return time.Time{}, fmt.Errorf("%w: got %T", ErrInvalidDate, value)
}

type enumField struct {
	base
	choices []any
}

// Enum passes values through unchanged. With WithChoices it also rejects
// values outside the declared set.
func Enum(opts ...FieldOption) Field {
	cfg := newConfig(opts)

	return enumField{base: base{cfg.options}, choices: cfg.choices}
}

func (f enumField) FromDTO(value any) (any, error) { return f.check(value) }
func (f enumField) ToDTO(value any) (any, error)   { return f.check(value) }

// Choices returns the declared set, or nil when unrestricted.
func (f enumField) Choices() []any {
	return f.choices
}

func (f enumField) check(value any) (any, error) {
	if len(f.choices) == 0 {
		return value, nil
	}

	for _, choice := range f.choices {
		if sameScalar(choice, value) {
			return value, nil
		}
	}

	return nil, fmt.Errorf("%w: %v not in %v", ErrInvalidChoice, value, f.choices)
}

// sameScalar compares across the int/float64 split JSON decoding introduces.
func sameScalar(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}

	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)

	_, aIsString := a.(string)
	_, bIsString := b.(string)

	return errA == nil && errB == nil && !aIsString && !bIsString && fa == fb
}

type jsonField struct{ base }

// JSON passes arbitrary JSON values through unchanged.
func JSON(opts ...FieldOption) Field {
	return jsonField{base{newConfig(opts).options}}
}

func (jsonField) FromDTO(value any) (any, error) { return value, nil }
func (jsonField) ToDTO(value any) (any, error)   { return value, nil }

type nestedField struct {
	base
	serializer *ModelSerializer
}

// Nested converts object values with another ModelSerializer.
func Nested(serializer *ModelSerializer, opts ...FieldOption) Field {
	return nestedField{base: base{newConfig(opts).options}, serializer: serializer}
}

func (f nestedField) FromDTO(value any) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, value)
	}

	return f.serializer.FromDTO(obj)
}

func (f nestedField) ToDTO(value any) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, value)
	}

	return f.serializer.ToDTO(obj)
}

// ConvertFunc converts a single value.
type ConvertFunc func(value any) (any, error)

type customField struct {
	base
	from ConvertFunc
	to   ConvertFunc
}

// Custom builds a field from a pair of conversion functions. A nil function
// leaves values unchanged in that direction.
func Custom(from, to ConvertFunc, opts ...FieldOption) Field {
	return customField{base: base{newConfig(opts).options}, from: from, to: to}
}

func (f customField) FromDTO(value any) (any, error) {
	if f.from == nil {
		return value, nil
	}

	return f.from(value)
}

func (f customField) ToDTO(value any) (any, error) {
	if f.to == nil {
		return value, nil
	}

	return f.to(value)
}
