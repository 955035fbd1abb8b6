package services

import "tubeconv/internal/models"

// UI is the presentation boundary the lifecycle controller reports to.
// Calls arrive from the goroutine driving the job, one at a time.
type UI interface {
	SetSubmitEnabled(enabled bool)
	Submitted(job *models.Job)
	Progress(job *models.Job)
	Completed(job *models.Job)
	Failed(message string)
}

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notifier shows short-lived messages such as the retrieval outcome.
type Notifier interface {
	Notify(message string, severity Severity)
}

// ProgressFunc receives the progress of a job that is still running.
// status is pending or processing as parsed from the service.
type ProgressFunc func(status models.JobStatus, progress int, message string)

// PollResult is the terminal outcome of one watch loop.
type PollResult struct {
	State       models.TerminalState
	ArtifactURL string
	Filename    string
	Message     string
	Polls       int
}

// DeliveredFile is an artifact written to local storage.
type DeliveredFile struct {
	Name string
	Path string
	Size int64
}
