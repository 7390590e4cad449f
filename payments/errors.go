package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport failures: the processor could not be reached
	// or its response could not be read.
	ErrUnavailable = errors.New("payment processor unavailable")
	// ErrAPI matches any *APIError.
	ErrAPI = errors.New("payment processor error")
)

// APIError is a non-2xx response from the processor.
type APIError struct {
	StatusCode int
	Message    string
	Body       Envelope
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("IntaSend API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("IntaSend API returned status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}
