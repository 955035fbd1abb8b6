package models

import (
	"errors"
	"fmt"
)

// Error kinds of the job lifecycle. Match them with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrRequestTimeout     = errors.New("request timeout")
	ErrSubmissionRejected = errors.New("submission rejected")
	ErrPollFailed         = errors.New("poll failed")
	ErrPollGivenUp        = errors.New("poll given up")
	ErrPollTimedOut       = errors.New("poll timed out")
	ErrRetrievalWarning   = errors.New("retrieval warning")

	ErrBusy = errors.New("a conversion is already in progress")
)

// LifecycleError is a classified failure with a user-facing message.
type LifecycleError struct {
	Kind    error
	Message string
	Err     error
}

func (e *LifecycleError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *LifecycleError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Detail returns the message followed by the underlying cause, for logs.
func (e *LifecycleError) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", e.Error(), e.Err)
	}
	return e.Error()
}

func newLifecycleError(kind error, message string, err error) *LifecycleError {
	return &LifecycleError{Kind: kind, Message: message, Err: err}
}

var (
	NewValidationError = func(message string, err error) *LifecycleError {
		return newLifecycleError(ErrValidation, message, err)
	}
	NewRequestTimeoutError = func(message string, err error) *LifecycleError {
		return newLifecycleError(ErrRequestTimeout, message, err)
	}
	NewSubmissionRejectedError = func(message string, err error) *LifecycleError {
		return newLifecycleError(ErrSubmissionRejected, message, err)
	}
	NewPollFailedError = func(message string, err error) *LifecycleError {
		return newLifecycleError(ErrPollFailed, message, err)
	}
	NewPollGivenUpError = func(message string, err error) *LifecycleError {
		return newLifecycleError(ErrPollGivenUp, message, err)
	}
	NewPollTimedOutError = func(message string, err error) *LifecycleError {
		return newLifecycleError(ErrPollTimedOut, message, err)
	}
	NewRetrievalWarning = func(message string, err error) *LifecycleError {
		return newLifecycleError(ErrRetrievalWarning, message, err)
	}
)

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
