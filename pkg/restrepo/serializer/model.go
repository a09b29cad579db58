package serializer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

// Fields maps DTO keys to their fields. The same keys are used on the model.
type Fields map[string]Field

// Option configures a ModelSerializer.
type Option func(*ModelSerializer)

// WithReporter routes mapping warnings to r.
func WithReporter(r Reporter) Option {
	return func(ms *ModelSerializer) {
		if r != nil {
			ms.reporter = r
		}
	}
}

// WithLogger routes mapping warnings to logger at warn level.
func WithLogger(logger restrepo.Logger) Option {
	return func(ms *ModelSerializer) {
		ms.reporter = NewLogReporter(logger)
	}
}

// ModelSerializer converts whole objects field by field. Keys without a field
// are reported and skipped in both directions.
type ModelSerializer struct {
	name     string
	fields   Fields
	reporter Reporter
}

var _ restrepo.Serializer[restrepo.Model] = (*ModelSerializer)(nil)

// NewModelSerializer creates a ModelSerializer. name only labels warnings.
func NewModelSerializer(name string, fields Fields, opts ...Option) *ModelSerializer {
	ms := &ModelSerializer{
		name:     name,
		fields:   maps.Clone(fields),
		reporter: NewLogReporter(nil),
	}

	if ms.fields == nil {
		ms.fields = Fields{}
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// Name returns the label used in warnings.
func (ms *ModelSerializer) Name() string {
	return ms.name
}

// Field returns the field mapped to key.
func (ms *ModelSerializer) Field(key string) (Field, bool) {
	f, ok := ms.fields[key]

	return f, ok
}

// Keys returns the mapped keys in sorted order.
func (ms *ModelSerializer) Keys() []string {
	return slices.Sorted(maps.Keys(ms.fields))
}

// FromDTO converts every mapped key of dto.
func (ms *ModelSerializer) FromDTO(dto restrepo.DTO) (restrepo.Model, error) {
	model := make(restrepo.Model, len(dto))

	for _, key := range slices.Sorted(maps.Keys(dto)) {
		field, ok := ms.fields[key]
		if !ok {
			ms.warn(DirectionFromDTO, key)

			continue
		}

		value, err := ConvertFromDTO(field, dto[key])
		if err != nil {
			return nil, fmt.Errorf("%s: field %q: %w", ms.name, key, err)
		}

		model[key] = value
	}

	return model, nil
}

// ToDTO converts every mapped, writable key of model. Readonly keys are
// dropped silently.
func (ms *ModelSerializer) ToDTO(model restrepo.Model) (restrepo.DTO, error) {
	dto := make(restrepo.DTO, len(model))

	for _, key := range slices.Sorted(maps.Keys(model)) {
		field, ok := ms.fields[key]
		if !ok {
			ms.warn(DirectionToDTO, key)

			continue
		}

		if field.Options().Readonly {
			continue
		}

		value, err := ConvertToDTO(field, model[key])
		if err != nil {
			return nil, fmt.Errorf("%s: field %q: %w", ms.name, key, err)
		}

		dto[key] = value
	}

	return dto, nil
}

func (ms *ModelSerializer) warn(direction Direction, key string) {
	ms.reporter.Report(Warning{
		Serializer: ms.name,
		Direction:  direction,
		Key:        key,
	})
}
