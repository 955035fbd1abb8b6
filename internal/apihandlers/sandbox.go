// Package apihandlers serves an in-memory stand-in for the conversion
// service API. Jobs advance one scripted step per status poll, which makes
// the client's whole lifecycle reproducible without network access.
package apihandlers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tubeconv/internal/models"
)

// Step is one scripted status answer.
type Step struct {
	Status   models.JobStatus
	Progress float64
	Message  string
}

// DefaultScript walks a job from queued to completed in four polls.
var DefaultScript = []Step{
	{Status: "starting", Progress: 0, Message: "Fetching video info..."},
	{Status: models.JobStatusProcessing, Progress: 30, Message: "Processing... 30%"},
	{Status: models.JobStatusProcessing, Progress: 90, Message: "Processing... 90%"},
	{Status: models.JobStatusCompleted, Progress: 100, Message: "Download ready"},
}

type sandboxTask struct {
	id      string
	req     models.ConvertRequest
	videoID string
	polls   int
	state   Step
	fileURL string
}

func (t *sandboxTask) filename(title string) string {
	return fmt.Sprintf("%s %s.%s", title, t.videoID, t.req.Format)
}

// Sandbox holds the scripted tasks. The zero value is not usable; build one
// with NewSandbox.
type Sandbox struct {
	mu       sync.Mutex
	tasks    map[string]*sandboxTask
	byURL    map[string]*sandboxTask
	script   []Step
	artifact []byte
	title    string
	newID    func() string
}

type Option func(*Sandbox)

// WithScript replaces DefaultScript. The last step repeats once reached.
func WithScript(steps ...Step) Option {
	return func(s *Sandbox) { s.script = steps }
}

// WithArtifact sets the bytes served for every completed job.
func WithArtifact(b []byte) Option {
	return func(s *Sandbox) { s.artifact = b }
}

// WithTitle sets the title part of generated file names.
func WithTitle(title string) Option {
	return func(s *Sandbox) { s.title = title }
}

// WithIDFunc overrides uuid task IDs.
func WithIDFunc(fn func() string) Option {
	return func(s *Sandbox) { s.newID = fn }
}

func NewSandbox(opts ...Option) *Sandbox {
	s := &Sandbox{
		tasks:    make(map[string]*sandboxTask),
		byURL:    make(map[string]*sandboxTask),
		script:   DefaultScript,
		artifact: []byte("tubeconv sandbox artifact\n"),
		title:    "Sandbox video",
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register mounts the service routes on r, normally a group at "/api".
func (s *Sandbox) Register(r gin.IRouter) {
	r.POST("/download", s.StartDownloadHandler)
	r.GET("/status/:id", s.StatusHandler)
	r.GET("/file/:id", s.FileHandler)
	r.POST("/proxy-download", s.ProxyDownloadHandler)
	r.GET("/health", s.HealthHandler)
}

// StartDownloadHandler handles POST /api/download.
func (s *Sandbox) StartDownloadHandler(c *gin.Context) {
	var req models.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	if req.SourceURL == "" {
		BadRequest(c, "URL is required")
		return
	}
	videoID := models.ExtractVideoID(req.SourceURL)
	if videoID == "" {
		BadRequest(c, "Not a valid YouTube URL")
		return
	}
	if req.Format == "" {
		req.Format = models.FormatMP4
	}

	task := &sandboxTask{id: s.newID(), req: req, videoID: videoID, state: s.script[0]}
	task.fileURL = fmt.Sprintf("%s://%s/api/file/%s", scheme(c), c.Request.Host, task.id)

	s.mu.Lock()
	s.tasks[task.id] = task
	s.byURL[task.fileURL] = task
	s.mu.Unlock()

	log.WithFields(log.Fields{"task_id": task.id, "video_id": videoID, "format": req.Format}).Info("Sandbox task started")
	c.JSON(http.StatusOK, gin.H{"success": true, "task_id": task.id, "message": "Download started"})
}

// StatusHandler handles GET /api/status/:id and advances the task one step.
func (s *Sandbox) StatusHandler(c *gin.Context) {
	s.mu.Lock()
	task, ok := s.tasks[c.Param("id")]
	if !ok {
		s.mu.Unlock()
		NotFound(c, "Invalid task ID")
		return
	}
	step := s.script[min(task.polls, len(s.script)-1)]
	task.polls++
	task.state = step
	s.mu.Unlock()

	resp := gin.H{"status": step.Status, "progress": step.Progress, "message": step.Message}
	switch step.Status {
	case models.JobStatusCompleted:
		resp["download_url"] = task.fileURL
		resp["filename"] = task.filename(s.title)
	case models.JobStatusFailed:
		resp["error"] = step.Message
	}
	c.JSON(http.StatusOK, resp)
}

// FileHandler serves the artifact directly, standing in for the CDN link.
func (s *Sandbox) FileHandler(c *gin.Context) {
	s.mu.Lock()
	task, ok := s.tasks[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		NotFound(c, "Invalid task ID")
		return
	}
	s.serveArtifact(c, task)
}

// ProxyDownloadHandler handles POST /api/proxy-download.
func (s *Sandbox) ProxyDownloadHandler(c *gin.Context) {
	var body struct {
		DownloadURL string `json:"download_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.DownloadURL == "" {
		BadRequest(c, "download_url is required")
		return
	}
	s.mu.Lock()
	task, ok := s.byURL[body.DownloadURL]
	s.mu.Unlock()
	if !ok {
		BadRequest(c, "File could not be downloaded")
		return
	}
	s.serveArtifact(c, task)
}

func (s *Sandbox) serveArtifact(c *gin.Context, task *sandboxTask) {
	s.mu.Lock()
	state := task.state.Status
	s.mu.Unlock()
	if state != models.JobStatusCompleted {
		BadRequest(c, "File is not ready")
		return
	}
	contentType := "video/mp4"
	if task.req.Format.Kind() == models.MediaAudio {
		contentType = "audio/mpeg"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", task.filename(s.title)))
	c.Data(http.StatusOK, contentType, s.artifact)
}

// HealthHandler handles GET /api/health.
func (s *Sandbox) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"version":      "sandbox",
		"active_tasks": s.ActiveTasks(),
	})
}

// ActiveTasks counts tasks that have not reached a terminal status.
func (s *Sandbox) ActiveTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.state.Status.IsTerminal() {
			n++
		}
	}
	return n
}

func scheme(c *gin.Context) string {
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
