package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"tubeconv/internal/clock"
	"tubeconv/internal/models"
	"tubeconv/internal/store"
)

const (
	msgPollTooLong     = "The download took too long. Please try again."
	msgPollTimedOut    = "Status check timed out. Please try again."
	msgPollFailed      = "Status check failed."
	msgJobFailed       = "Download failed."
	defaultProgressMsg = "Processing..."
)

// StatusPoller watches a job until it reaches a terminal state.
type StatusPoller struct {
	client  store.JobClient
	policy  RetryPolicy
	timeout time.Duration
	clock   clock.Clock
}

func NewStatusPoller(client store.JobClient, policy RetryPolicy, requestTimeout time.Duration, clk clock.Clock) *StatusPoller {
	if clk == nil {
		clk = clock.Real{}
	}
	return &StatusPoller{client: client, policy: policy, timeout: requestTimeout, clock: clk}
}

// pollState belongs to a single Watch call.
type pollState struct {
	jobID      string
	retryCount int
	startedAt  time.Time
	polls      int
}

// stepOutcome is either terminal (done) or the delay before the next step.
type stepOutcome struct {
	done   bool
	result PollResult
	err    error
	delay  time.Duration
}

// Watch polls jobID until it completes, fails, times out or is given up.
// onProgress runs after every successful non-terminal poll and never after
// a retried timeout. Cancelling ctx aborts the in-flight request and any
// pending delay, and Watch returns ctx.Err().
func (p *StatusPoller) Watch(ctx context.Context, jobID string, onProgress ProgressFunc) (PollResult, error) {
	st := &pollState{jobID: jobID, startedAt: p.clock.Now()}
	logger := log.WithField("job_id", jobID)

	for {
		out := p.step(ctx, st, onProgress, logger)
		if out.done {
			out.result.Polls = st.polls
			return out.result, out.err
		}

		timer := p.clock.NewTimer(out.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return PollResult{Polls: st.polls}, ctx.Err()
		case <-timer.C():
		}
	}
}

func (p *StatusPoller) step(ctx context.Context, st *pollState, onProgress ProgressFunc, logger *log.Entry) stepOutcome {
	if err := ctx.Err(); err != nil {
		return stepOutcome{done: true, err: err}
	}

	if p.policy.Expired(p.elapsed(st)) {
		logger.WithField("elapsed", p.elapsed(st)).Error("job exceeded the polling ceiling")
		return terminal(models.TerminalTimedOut, models.NewPollTimedOutError(msgPollTooLong, nil))
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	resp, err := p.client.JobStatus(reqCtx, st.jobID)
	cancel()
	st.polls++

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stepOutcome{done: true, err: ctxErr}
		}
		return p.handleError(st, err, logger)
	}

	status := models.ParseJobStatus(resp.Status)
	switch status {
	case models.JobStatusCompleted:
		logger.WithField("filename", resp.Filename).Info("job completed")
		return stepOutcome{done: true, result: PollResult{
			State:       models.TerminalCompleted,
			ArtifactURL: resp.DownloadURL,
			Filename:    resp.Filename,
			Message:     resp.Message,
		}}
	case models.JobStatusFailed:
		msg := resp.Error
		if msg == "" {
			msg = msgJobFailed
		}
		logger.WithField("error", resp.Error).Error("job failed remotely")
		return terminal(models.TerminalFailed, models.NewPollFailedError(msg, nil))
	}

	progress := 0
	if resp.Progress != nil {
		progress = int(math.Round(*resp.Progress))
	}
	msg := resp.Message
	if msg == "" {
		msg = defaultProgressMsg
	}
	if onProgress != nil {
		onProgress(status, progress, msg)
	}
	st.retryCount = 0
	logger.WithFields(log.Fields{"status": resp.Status, "progress": progress}).Debug("job still running")
	return stepOutcome{delay: p.policy.PollInterval}
}

func (p *StatusPoller) handleError(st *pollState, err error, logger *log.Entry) stepOutcome {
	var herr *store.HTTPError
	switch {
	case errors.Is(err, models.ErrRequestTimeout):
		d := p.policy.Decide(AttemptTimeout, st.retryCount, p.elapsed(st))
		switch {
		case d.Action == ActionRetry:
			st.retryCount++
			logger.WithFields(log.Fields{"retry": st.retryCount, "max_retries": p.policy.MaxRetries}).Warn("status check timed out, retrying")
			return stepOutcome{delay: d.Delay}
		case d.Reason == ReasonDeadline:
			logger.Error("status check timed out past the polling ceiling")
			return terminal(models.TerminalTimedOut, models.NewPollTimedOutError(msgPollTooLong, err))
		default:
			logger.WithField("retries", st.retryCount).Error("status check timed out, giving up")
			return terminal(models.TerminalGivenUp, models.NewPollGivenUpError(msgPollTimedOut, err))
		}
	case errors.As(err, &herr):
		logger.WithField("status_code", herr.StatusCode).Error("status check rejected")
		return terminal(models.TerminalFailed,
			models.NewPollFailedError(fmt.Sprintf("HTTP %d: status check failed", herr.StatusCode), err))
	default:
		logger.WithError(err).Error("status check failed")
		return terminal(models.TerminalFailed, models.NewPollFailedError(msgPollFailed, err))
	}
}

func (p *StatusPoller) elapsed(st *pollState) time.Duration {
	return p.clock.Now().Sub(st.startedAt)
}

func terminal(state models.TerminalState, err error) stepOutcome {
	return stepOutcome{done: true, result: PollResult{State: state, Message: models.UserMessage(err)}, err: err}
}
