package restrepo

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrRootRequired       = errors.New("resource root is required")
	ErrClientRequired     = errors.New("HTTP client is required")
	ErrSerializerRequired = errors.New("serializer is required")
	ErrMissingPK          = errors.New("PK is missing")
	ErrInvalidPK          = errors.New("PK must be a string or an integer")
	ErrUnexpectedPayload  = errors.New("unexpected response payload")
	ErrBaseURLRequired    = errors.New("base URL is required")
	ErrConfigRequired     = errors.New("config is required")
)

// ResponseError is returned by the default transport for non-2xx responses.
type ResponseError struct {
	StatusCode int    `json:"-"`
	Method     string `json:"-"`
	URL        string `json:"-"`
	Body       []byte `json:"-"`

	// Detail is the DRF style {"detail": "..."} message, if the body carried one.
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	if e.Method == "" {
		return fmt.Sprintf("%s (status: %d)", msg, e.StatusCode)
	}

	return fmt.Sprintf("%s %s: %s (status: %d)", e.Method, e.URL, msg, e.StatusCode)
}

// IsStatus checks if err carries a ResponseError with the given status code.
func IsStatus(err error, status int) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode == status
	}

	return false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return IsStatus(err, http.StatusForbidden)
}
