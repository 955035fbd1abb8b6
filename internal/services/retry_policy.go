package services

import (
	"time"

	"tubeconv/internal/config"
)

// AttemptKind classifies how a status request ended.
type AttemptKind int

const (
	AttemptTimeout AttemptKind = iota
	AttemptHTTPError
	AttemptTransportError
)

func (k AttemptKind) String() string {
	switch k {
	case AttemptTimeout:
		return "timeout"
	case AttemptHTTPError:
		return "http_error"
	case AttemptTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

type Action int

const (
	ActionRetry Action = iota + 1
	ActionGiveUp
)

// Reason explains a give-up decision.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonDeadline         Reason = "deadline"
	ReasonRetriesExhausted Reason = "retries_exhausted"
	ReasonNotRetryable     Reason = "not_retryable"
)

type Decision struct {
	Action Action
	Delay  time.Duration
	Reason Reason
}

// RetryPolicy decides whether a failed status request is retried. It holds
// no state; the caller tracks the retry count and the start time.
type RetryPolicy struct {
	MaxRetries   int
	RetryDelay   time.Duration
	PollInterval time.Duration
	MaxElapsed   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		RetryDelay:   5 * time.Second,
		PollInterval: 3 * time.Second,
		MaxElapsed:   10 * time.Minute,
	}
}

// RetryPolicyFromConfig builds the policy from the poll.* settings.
func RetryPolicyFromConfig(cfg *config.Config) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   cfg.Poll.MaxRetries,
		RetryDelay:   cfg.Poll.RetryDelay,
		PollInterval: cfg.Poll.Interval,
		MaxElapsed:   cfg.Poll.MaxElapsed,
	}
}

// Expired reports whether the wall-clock ceiling has been passed.
func (p RetryPolicy) Expired(elapsed time.Duration) bool {
	return elapsed > p.MaxElapsed
}

// Decide returns what to do after a failed attempt. retryCount is the
// number of retries already spent since the last successful response.
// Only timeouts are retried, and never past the ceiling.
func (p RetryPolicy) Decide(kind AttemptKind, retryCount int, elapsed time.Duration) Decision {
	if p.Expired(elapsed) {
		return Decision{Action: ActionGiveUp, Reason: ReasonDeadline}
	}
	if kind != AttemptTimeout {
		return Decision{Action: ActionGiveUp, Reason: ReasonNotRetryable}
	}
	if retryCount < p.MaxRetries {
		return Decision{Action: ActionRetry, Delay: p.RetryDelay}
	}
	return Decision{Action: ActionGiveUp, Reason: ReasonRetriesExhausted}
}
