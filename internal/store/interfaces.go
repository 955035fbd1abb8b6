package store

import (
	"context"
	"io"

	"tubeconv/internal/models"
)

// --- Job Client ---

// JobClient talks to the remote conversion service. Implementations do not
// retry; callers bound each call with a context deadline and get
// models.ErrRequestTimeout back when it expires.
type JobClient interface {
	SubmitJob(ctx context.Context, req models.ConvertRequest) (*SubmitResponse, error)
	JobStatus(ctx context.Context, jobID string) (*StatusResponse, error)
	// ProxyDownload streams the artifact at artifactURL through the service.
	// The caller closes the returned body.
	ProxyDownload(ctx context.Context, artifactURL string) (io.ReadCloser, error)
	Health(ctx context.Context) (*HealthResponse, error)
}

// --- File Store ---

// FileStore delivers artifacts to the local machine.
type FileStore interface {
	// Save writes r under name and returns the final path and byte count.
	// Nothing is left behind when r fails part way.
	Save(ctx context.Context, name string, r io.Reader) (path string, size int64, err error)
}

// --- Wire types ---

type SubmitResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type StatusResponse struct {
	Status      string   `json:"status"`
	Progress    *float64 `json:"progress,omitempty"`
	Message     string   `json:"message,omitempty"`
	DownloadURL string   `json:"download_url,omitempty"`
	Filename    string   `json:"filename,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Version     string   `json:"version,omitempty"`
	ActiveTasks int      `json:"active_tasks,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

type proxyRequest struct {
	DownloadURL string `json:"download_url"`
}
