package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"tubeconv/internal/clock"
	"tubeconv/internal/models"
)

const msgCancelled = "Conversion cancelled."

// Controller runs submit, watch and retrieve for one job at a time and
// reports every step to the UI.
type Controller struct {
	submitter *JobSubmitter
	poller    *StatusPoller
	retriever *ArtifactRetriever
	ui        UI
	clock     clock.Clock

	mu     sync.Mutex
	active bool
}

func NewController(submitter *JobSubmitter, poller *StatusPoller, retriever *ArtifactRetriever, ui UI, clk clock.Clock) *Controller {
	if ui == nil {
		ui = NewNoopUI()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Controller{submitter: submitter, poller: poller, retriever: retriever, ui: ui, clock: clk}
}

// Run is one started conversion. Wait returns once a terminal state has
// been reported; Retrieval returns once the artifact has been delivered or
// the delivery has failed.
type Run struct {
	done          chan struct{}
	retrievalDone chan struct{}

	job          *models.Job
	result       PollResult
	err          error
	delivered    *DeliveredFile
	retrievalErr error
}

func newRun() *Run {
	return &Run{done: make(chan struct{}), retrievalDone: make(chan struct{})}
}

// Done is closed when the job reaches a terminal state.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the job is terminal. The job is nil when submission failed.
func (r *Run) Wait() (*models.Job, error) {
	<-r.done
	return r.job, r.err
}

// Result returns the poll outcome once Done is closed.
func (r *Run) Result() PollResult {
	<-r.done
	return r.result
}

// Retrieval blocks until the delivery step has finished. It returns nil, nil
// when the job never completed.
func (r *Run) Retrieval() (*DeliveredFile, error) {
	<-r.retrievalDone
	return r.delivered, r.retrievalErr
}

// Busy reports whether a job is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Start validates req and, when no other job is active, starts it in the
// background. Validation errors are reported to the UI and returned
// without any network call; a second Start while busy returns models.ErrBusy.
func (c *Controller) Start(ctx context.Context, req models.ConvertRequest) (*Run, error) {
	req.SourceURL = strings.TrimSpace(req.SourceURL)
	if err := req.Validate(); err != nil {
		c.ui.Failed(models.UserMessage(err))
		return nil, err
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil, models.ErrBusy
	}
	c.active = true
	c.mu.Unlock()

	c.ui.SetSubmitEnabled(false)
	run := newRun()
	go c.drive(ctx, req, run)
	return run, nil
}

// Convert starts req and waits for both the terminal state and the delivery.
func (c *Controller) Convert(ctx context.Context, req models.ConvertRequest) (*models.Job, *DeliveredFile, error) {
	run, err := c.Start(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	job, err := run.Wait()
	if err != nil {
		return job, nil, err
	}
	delivered, rerr := run.Retrieval()
	return job, delivered, rerr
}

func (c *Controller) drive(ctx context.Context, req models.ConvertRequest, run *Run) {
	defer close(run.retrievalDone)

	job, err := c.submitter.Submit(ctx, req)
	if err != nil {
		c.fail(run, nil, err)
		return
	}
	run.job = job
	c.ui.Submitted(job)

	logger := log.WithField("job_id", job.ID)
	result, err := c.poller.Watch(ctx, job.ID, func(status models.JobStatus, progress int, message string) {
		if perr := job.ApplyProgress(status, progress, message); perr != nil {
			logger.WithError(perr).Warn("ignoring progress update")
			return
		}
		c.ui.Progress(job)
	})
	run.result = result
	if err != nil {
		c.fail(run, job, err)
		return
	}

	if cerr := job.Complete(result.ArtifactURL, result.Filename, result.Message, c.clock.Now()); cerr != nil {
		logger.WithError(cerr).Error("could not mark job completed")
	}
	c.ui.Completed(job)
	c.release()
	close(run.done)

	run.delivered, run.retrievalErr = c.retriever.Retrieve(ctx, job.ArtifactURL, job.ArtifactFilename)
}

func (c *Controller) fail(run *Run, job *models.Job, err error) {
	message := models.UserMessage(err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		message = msgCancelled
	}
	if job != nil {
		if ferr := job.Fail(message, c.clock.Now()); ferr != nil {
			log.WithError(ferr).WithField("job_id", job.ID).Warn("could not mark job failed")
		}
	}
	run.err = err
	c.ui.Failed(message)
	c.release()
	close(run.done)
}

func (c *Controller) release() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
	c.ui.SetSubmitEnabled(true)
}
