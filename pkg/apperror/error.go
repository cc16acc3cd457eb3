package apperror

import (
	"errors"
	"fmt"

	"grounded-qa/pkg/apperror/status"
)

var (
	// ErrUnknownIndex marks a hit from an index that has no entry in the
	// source field map. It is a configuration error and fails the request.
	ErrUnknownIndex = errors.New("no source field configured for index")
	// ErrService marks a failed call to the search or completion service.
	ErrService = errors.New("service error")
	// ErrMalformedResponse marks a service response missing an expected field.
	ErrMalformedResponse = errors.New("malformed response")
)

// Service wraps a failed call to an external service.
func Service(code status.ErrorCode, service string, err error) error {
	return status.New(code, fmt.Errorf("%w: %s: %w", ErrService, service, err))
}

// Malformed reports a response that lacks an expected field.
func Malformed(code status.ErrorCode, format string, args ...any) error {
	return status.New(code, fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...)))
}

// UnknownIndex reports an index missing from the source field map.
func UnknownIndex(index string) error {
	return status.New(status.PromptIndexFieldMissing, fmt.Errorf("%w: %q", ErrUnknownIndex, index))
}
