package models

import (
	"regexp"
	"strings"
	"time"
)

// Format is the requested output container. mp4 yields video, mp3 audio.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMP3 Format = "mp3"
)

// MediaKind is the broad kind of artifact a Format produces.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// QualityBest is accepted for every format.
const QualityBest = "best"

var qualityOptions = map[Format][]string{
	FormatMP4: {QualityBest, "1080p", "720p", "480p", "360p"},
	FormatMP3: {QualityBest, "256", "192", "128"},
}

// Kind returns the media kind produced by f.
func (f Format) Kind() MediaKind {
	if f == FormatMP3 {
		return MediaAudio
	}
	return MediaVideo
}

// IsKnown reports whether f is a supported format.
func (f Format) IsKnown() bool {
	_, ok := qualityOptions[f]
	return ok
}

// QualityOptions returns the qualities selectable for f, best first.
func (f Format) QualityOptions() []string {
	opts := qualityOptions[f]
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// SupportsQuality reports whether quality is selectable for f.
func (f Format) SupportsQuality(quality string) bool {
	for _, q := range qualityOptions[f] {
		if q == quality {
			return true
		}
	}
	return false
}

// ConvertRequest holds the immutable inputs of one conversion job.
type ConvertRequest struct {
	SourceURL string `json:"url"`
	Format    Format `json:"format"`
	Quality   string `json:"quality"`
}

// Job is one remote conversion request tracked by the client.
type Job struct {
	ID        string
	SourceURL string
	Format    Format
	Quality   string
	VideoID   string

	Status   JobStatus
	Progress int // 0 to 100
	Message  string

	ArtifactURL      string // set once completed
	ArtifactFilename string // set once completed
	ErrorText        string // set once failed

	SubmittedAt time.Time
	FinishedAt  time.Time
}

// NewJob creates a pending job for a freshly accepted submission.
func NewJob(id string, req ConvertRequest, now time.Time) *Job {
	return &Job{
		ID:          id,
		SourceURL:   req.SourceURL,
		Format:      req.Format,
		Quality:     req.Quality,
		VideoID:     ExtractVideoID(req.SourceURL),
		Status:      JobStatusPending,
		SubmittedAt: now,
	}
}

// ApplyProgress records a non-terminal poll. Progress is clamped to 0..100
// and never moves backwards. A pending report after processing keeps the
// job processing.
func (j *Job) ApplyProgress(status JobStatus, progress int, message string) error {
	if status == JobStatusPending && j.Status == JobStatusProcessing {
		status = JobStatusProcessing
	}
	if err := TransitionJobStatus(j, status); err != nil {
		return err
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if progress > j.Progress {
		j.Progress = progress
	}
	j.Message = message
	return nil
}

// Complete marks the job completed with its artifact.
func (j *Job) Complete(artifactURL, filename, message string, now time.Time) error {
	if err := TransitionJobStatus(j, JobStatusCompleted); err != nil {
		return err
	}
	j.Progress = 100
	j.ArtifactURL = artifactURL
	j.ArtifactFilename = filename
	j.Message = message
	j.FinishedAt = now
	return nil
}

// Fail marks the job failed with errorText.
func (j *Job) Fail(errorText string, now time.Time) error {
	if err := TransitionJobStatus(j, JobStatusFailed); err != nil {
		return err
	}
	j.ErrorText = errorText
	j.FinishedAt = now
	return nil
}

// DisplayTitle returns the artifact filename, video id, or URL in order of preference
func (j *Job) DisplayTitle() string {
	if j.ArtifactFilename != "" {
		return j.ArtifactFilename
	}
	if j.VideoID != "" {
		return j.VideoID
	}
	return j.SourceURL
}

var (
	sourceURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+`)
	videoIDPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`),
		regexp.MustCompile(`(?:embed/|v/|youtu\.be/)([0-9A-Za-z_-]{11})`),
	}
)

// IsValidSourceURL reports whether raw points at a recognized video host.
func IsValidSourceURL(raw string) bool {
	return sourceURLPattern.MatchString(raw)
}

// ValidateSourceURL checks the URL shape before any network call is made.
func ValidateSourceURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewValidationError("Please enter a valid YouTube URL.", nil)
	}
	if !IsValidSourceURL(raw) {
		return NewValidationError("Please enter a valid YouTube URL.", nil)
	}
	return nil
}

// Validate checks every input of a conversion request.
func (r ConvertRequest) Validate() error {
	if err := ValidateSourceURL(r.SourceURL); err != nil {
		return err
	}
	if !r.Format.IsKnown() {
		return NewValidationError("Unsupported format \""+string(r.Format)+"\" (expected mp4 or mp3).", nil)
	}
	if !r.Format.SupportsQuality(r.Quality) {
		return NewValidationError("Quality \""+r.Quality+"\" is not available for "+string(r.Format)+" (choose one of "+strings.Join(r.Format.QualityOptions(), ", ")+").", nil)
	}
	return nil
}

// ExtractVideoID returns the 11-character video id in raw, or "" when none is found.
func ExtractVideoID(raw string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}
