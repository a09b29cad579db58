package serializer

import "errors"

// Static errors for err113 compliance.
var (
	ErrNotSequence       = errors.New("value is not a sequence")
	ErrNotObject         = errors.New("value is not an object")
	ErrInvalidNumber     = errors.New("value is not a number")
	ErrInvalidDate       = errors.New("value is not an ISO-8601 date")
	ErrInvalidChoice     = errors.New("value is not a valid choice")
	ErrUnknownFieldType  = errors.New("unknown field type")
	ErrSchemaInvalid     = errors.New("invalid schema")
	ErrPublisherRequired = errors.New("NATS publisher is required")
)
