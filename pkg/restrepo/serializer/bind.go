package serializer

import (
	"fmt"
	"maps"
	"reflect"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

// Binding adapts a ModelSerializer to a Go struct type T. Struct fields are
// matched by their json tags. Keys the serializer produced but T has no
// field for are reported like unmapped keys.
type Binding[T any] struct {
	serializer *ModelSerializer
}

var _ restrepo.Serializer[struct{}] = (*Binding[struct{}])(nil)

// Bind creates a Binding for T over ms.
func Bind[T any](ms *ModelSerializer) *Binding[T] {
	return &Binding[T]{serializer: ms}
}

// FromDTO converts dto with the serializer, then decodes the model into T.
func (b *Binding[T]) FromDTO(dto restrepo.DTO) (T, error) {
	var out T

	model, err := b.serializer.FromDTO(dto)
	if err != nil {
		return out, err
	}

	var meta mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Metadata:         &meta,
		Result:           &out,
		TagName:          "json",
	})
	if err != nil {
		return out, fmt.Errorf("creating decoder for %s: %w", typeName[T](), err)
	}

	err = decoder.Decode(model)
	if err != nil {
		return out, fmt.Errorf("decoding %s: %w", typeName[T](), err)
	}

	for _, key := range meta.Unused {
		b.serializer.warn(DirectionFromDTO, key)
	}

	return out, nil
}

// ToDTO encodes value to a JSON object, then converts it with the serializer.
// Use omitempty tags to leave fields out of partial updates.
func (b *Binding[T]) ToDTO(value T) (restrepo.DTO, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", typeName[T](), err)
	}

	var model restrepo.Model

	err = json.Unmarshal(data, &model)
	if err != nil {
		return nil, fmt.Errorf("%s does not encode to an object: %w", typeName[T](), err)
	}

	return b.serializer.ToDTO(model)
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

type passthrough struct{}

// Passthrough returns a serializer that hands DTOs through as models.
func Passthrough() restrepo.Serializer[restrepo.DTO] {
	return passthrough{}
}

func (passthrough) FromDTO(dto restrepo.DTO) (restrepo.DTO, error) {
	return maps.Clone(dto), nil
}

func (passthrough) ToDTO(model restrepo.DTO) (restrepo.DTO, error) {
	return maps.Clone(model), nil
}
