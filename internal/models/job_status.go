package models

import "fmt"

// JobStatus is the remote state of a conversion job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition can happen from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Terminal outcomes of one watch loop. Completed and Failed mirror the
// remote status; TimedOut and GivenUp only exist on the client.
type TerminalState string

const (
	TerminalCompleted TerminalState = "completed"
	TerminalFailed    TerminalState = "failed"
	TerminalTimedOut  TerminalState = "timed_out"
	TerminalGivenUp   TerminalState = "given_up"
)

var allowedTransitions = map[JobStatus]map[JobStatus]bool{
	"": {
		JobStatusPending:    true,
		JobStatusProcessing: true,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
	},
	JobStatusPending: {
		JobStatusPending:    true,
		JobStatusProcessing: true,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
	},
	JobStatusProcessing: {
		JobStatusProcessing: true,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
	},
	// terminal states only accept themselves
	JobStatusCompleted: {JobStatusCompleted: true},
	JobStatusFailed:    {JobStatusFailed: true},
}

// ParseJobStatus maps a backend status string onto a JobStatus. The
// backend reports "starting" before the worker picks the job up, and
// anything unknown is treated as still pending.
func ParseJobStatus(raw string) JobStatus {
	switch JobStatus(raw) {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return JobStatus(raw)
	default:
		return JobStatusPending
	}
}

func CanTransition(from, to JobStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// TransitionJobStatus moves job to toStatus, refusing to leave a terminal state.
func TransitionJobStatus(job *Job, toStatus JobStatus) error {
	from := job.Status
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid job status transition: %q -> %q (job_id=%s)", from, toStatus, job.ID)
	}
	job.Status = toStatus
	return nil
}
