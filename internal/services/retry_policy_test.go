package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tubeconv/internal/config"
)

func TestRetryPolicy_Decide(t *testing.T) {
	p := DefaultRetryPolicy()

	tests := []struct {
		name       string
		kind       AttemptKind
		retryCount int
		elapsed    time.Duration
		expected   Decision
	}{
		{"first timeout retries", AttemptTimeout, 0, time.Second, Decision{Action: ActionRetry, Delay: 5 * time.Second}},
		{"third timeout still retries", AttemptTimeout, 2, time.Minute, Decision{Action: ActionRetry, Delay: 5 * time.Second}},
		{"fourth timeout gives up", AttemptTimeout, 3, time.Minute, Decision{Action: ActionGiveUp, Reason: ReasonRetriesExhausted}},
		{"ceiling beats retry budget", AttemptTimeout, 0, 10*time.Minute + time.Millisecond, Decision{Action: ActionGiveUp, Reason: ReasonDeadline}},
		{"exactly at ceiling is not expired", AttemptTimeout, 0, 10 * time.Minute, Decision{Action: ActionRetry, Delay: 5 * time.Second}},
		{"http errors are not retried", AttemptHTTPError, 0, time.Second, Decision{Action: ActionGiveUp, Reason: ReasonNotRetryable}},
		{"transport errors are not retried", AttemptTransportError, 0, time.Second, Decision{Action: ActionGiveUp, Reason: ReasonNotRetryable}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, p.Decide(tc.kind, tc.retryCount, tc.elapsed))
		})
	}
}

func TestRetryPolicy_ZeroRetries(t *testing.T) {
	p := DefaultRetryPolicy()
	p.MaxRetries = 0
	assert.Equal(t, ActionGiveUp, p.Decide(AttemptTimeout, 0, 0).Action)
}

func TestRetryPolicyFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Poll.MaxRetries = 7
	cfg.Poll.Interval = time.Second

	p := RetryPolicyFromConfig(cfg)
	assert.Equal(t, 7, p.MaxRetries)
	assert.Equal(t, time.Second, p.PollInterval)
	assert.Equal(t, 5*time.Second, p.RetryDelay)
	assert.Equal(t, 10*time.Minute, p.MaxElapsed)
	assert.Equal(t, "timeout", AttemptTimeout.String())
}
