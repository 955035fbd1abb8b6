package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"tubeconv/internal/clock"
	"tubeconv/internal/models"
	"tubeconv/internal/store"
)

// Request timeouts used when the configuration does not override them.
const (
	DefaultSubmitTimeout = 30 * time.Second
	DefaultStatusTimeout = 10 * time.Second
)

const (
	msgSubmitTimeout  = "Request timed out. Please try again."
	msgSubmitRejected = "Could not start the download."
	msgSubmitFailed   = "An error occurred while starting the download."
)

// JobSubmitter creates remote conversion jobs. Submission is never retried.
type JobSubmitter struct {
	client  store.JobClient
	timeout time.Duration
	clock   clock.Clock
}

func NewJobSubmitter(client store.JobClient, timeout time.Duration, clk clock.Clock) *JobSubmitter {
	if clk == nil {
		clk = clock.Real{}
	}
	return &JobSubmitter{client: client, timeout: timeout, clock: clk}
}

// Submit sends one job-creation request. The request must already be
// validated. The returned job is pending and carries the remote id.
func (s *JobSubmitter) Submit(ctx context.Context, req models.ConvertRequest) (*models.Job, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger := log.WithFields(log.Fields{"url": req.SourceURL, "format": req.Format, "quality": req.Quality})
	logger.Debug("submitting conversion job")

	resp, err := s.client.SubmitJob(reqCtx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.WithError(err).Warn("job submission failed")
		return nil, classifySubmitError(err)
	}

	if !resp.Success || resp.TaskID == "" {
		msg := resp.Error
		if msg == "" {
			msg = msgSubmitRejected
		}
		logger.WithField("error", resp.Error).Warn("job submission rejected")
		return nil, models.NewSubmissionRejectedError(msg, nil)
	}

	job := models.NewJob(resp.TaskID, req, s.clock.Now())
	job.Message = resp.Message
	logger.WithField("job_id", job.ID).Info("conversion job accepted")
	return job, nil
}

func classifySubmitError(err error) error {
	if errors.Is(err, models.ErrRequestTimeout) {
		return models.NewRequestTimeoutError(msgSubmitTimeout, err)
	}
	var herr *store.HTTPError
	if errors.As(err, &herr) {
		msg := herr.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: download failed", herr.StatusCode)
		}
		return models.NewSubmissionRejectedError(msg, err)
	}
	return models.NewSubmissionRejectedError(msgSubmitFailed, err)
}
