package store

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedResponse = errors.New("store: unexpected response body")
	ErrTooLarge           = errors.New("store: artifact exceeds size limit")
	ErrInvalidName        = errors.New("store: invalid file name")
)

// HTTPError is a non-2xx answer from the conversion service. Message holds
// the body's "error" field when the service sent one.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
