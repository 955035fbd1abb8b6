package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"tubeconv/internal/clock"
	"tubeconv/internal/models"
	"tubeconv/internal/store"
)

var testStart = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type mockJobClient struct {
	mock.Mock
}

func (m *mockJobClient) SubmitJob(ctx context.Context, req models.ConvertRequest) (*store.SubmitResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*store.SubmitResponse)
	return resp, args.Error(1)
}

func (m *mockJobClient) JobStatus(ctx context.Context, jobID string) (*store.StatusResponse, error) {
	args := m.Called(ctx, jobID)
	resp, _ := args.Get(0).(*store.StatusResponse)
	return resp, args.Error(1)
}

func (m *mockJobClient) ProxyDownload(ctx context.Context, artifactURL string) (io.ReadCloser, error) {
	args := m.Called(ctx, artifactURL)
	body, _ := args.Get(0).(io.ReadCloser)
	return body, args.Error(1)
}

func (m *mockJobClient) Health(ctx context.Context) (*store.HealthResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*store.HealthResponse)
	return resp, args.Error(1)
}

func timeoutErr() error {
	return fmt.Errorf("GET /status/t1: %w: %w", models.ErrRequestTimeout, context.DeadlineExceeded)
}

func processing(progress float64, message string) *store.StatusResponse {
	return &store.StatusResponse{Status: "processing", Progress: &progress, Message: message}
}

func completed(url, filename string) *store.StatusResponse {
	return &store.StatusResponse{Status: "completed", DownloadURL: url, Filename: filename, Message: "Done"}
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

// recordingUI keeps every event in arrival order.
type recordingUI struct {
	mu       sync.Mutex
	events   []string
	progress []int
	statuses []models.JobStatus
	failures []string
}

func (u *recordingUI) add(ev string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.events = append(u.events, ev)
}

func (u *recordingUI) SetSubmitEnabled(enabled bool) { u.add(fmt.Sprintf("enabled=%t", enabled)) }
func (u *recordingUI) Submitted(job *models.Job) { u.add("submitted:" + job.ID) }
func (u *recordingUI) Completed(job *models.Job) { u.add("completed:" + job.ArtifactFilename) }

func (u *recordingUI) Progress(job *models.Job) {
	u.mu.Lock()
	u.progress = append(u.progress, job.Progress)
	u.statuses = append(u.statuses, job.Status)
	u.mu.Unlock()
	u.add(fmt.Sprintf("progress:%d", job.Progress))
}

func (u *recordingUI) Failed(message string) {
	u.mu.Lock()
	u.failures = append(u.failures, message)
	u.mu.Unlock()
	u.add("failed:" + message)
}

func (u *recordingUI) Statuses() []models.JobStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]models.JobStatus(nil), u.statuses...)
}

func (u *recordingUI) Events() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.events...)
}

type notification struct {
	Message  string
	Severity Severity
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []notification
}

func (n *recordingNotifier) Notify(message string, severity Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, notification{message, severity})
}

func (n *recordingNotifier) Notes() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.notes...)
}

func newTestPoller(client store.JobClient, clk *clock.Manual) *StatusPoller {
	return NewStatusPoller(client, DefaultRetryPolicy(), 10*time.Second, clk)
}

// heldClock hands out timers that never fire on their own. Pending counts
// the ones not yet stopped.
type heldClock struct {
	mu      sync.Mutex
	now     time.Time
	pending int
}

func (c *heldClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *heldClock) NewTimer(time.Duration) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending++
	return &heldTimer{clock: c, ch: make(chan time.Time)}
}

func (c *heldClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

type heldTimer struct {
	clock   *heldClock
	ch      chan time.Time
	stopped bool
}

func (t *heldTimer) C() <-chan time.Time { return t.ch }

func (t *heldTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	t.clock.pending--
	return true
}
