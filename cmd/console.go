package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"tubeconv/internal/models"
	"tubeconv/internal/services"
)

var (
	successText = color.New(color.FgGreen).SprintFunc()
	warningText = color.New(color.FgYellow).SprintFunc()
	infoText    = color.New(color.FgCyan).SprintFunc()
	errorText   = color.New(color.FgRed, color.Bold).SprintFunc()
	faintText   = color.New(color.Faint).SprintFunc()
)

// Console renders lifecycle events as terminal lines. It is both the UI and
// the Notifier of a convert run.
type Console struct {
	out io.Writer

	mu           sync.Mutex
	lastProgress int
	lastMessage  string
}

var (
	_ services.UI       = (*Console)(nil)
	_ services.Notifier = (*Console)(nil)
)

func NewConsole(out io.Writer) *Console {
	return &Console{out: out, lastProgress: -1}
}

func (c *Console) SetSubmitEnabled(enabled bool) {
	if !enabled {
		c.printf("%s\n", infoText("Submitting conversion request..."))
	}
}

func (c *Console) Submitted(job *models.Job) {
	c.printf("Job %s accepted (%s, %s)\n", job.ID, job.Format, job.Quality)
}

// Progress prints a line only when the percentage or the message changed.
func (c *Console) Progress(job *models.Job) {
	c.mu.Lock()
	if job.Progress == c.lastProgress && job.Message == c.lastMessage {
		c.mu.Unlock()
		return
	}
	c.lastProgress, c.lastMessage = job.Progress, job.Message
	c.mu.Unlock()

	c.printf("%s %s\n", infoText(progressBar(job.Progress)), job.Message)
}

func (c *Console) Completed(job *models.Job) {
	c.printf("%s %s\n", successText("Conversion complete:"), job.DisplayTitle())
	if job.ArtifactURL != "" {
		c.printf("%s %s\n", faintText("Direct link:"), job.ArtifactURL)
	}
}

func (c *Console) Failed(message string) {
	c.printf("%s %s\n", errorText("Error:"), message)
}

func (c *Console) Notify(message string, severity services.Severity) {
	switch severity {
	case services.SeveritySuccess:
		c.printf("%s\n", successText(message))
	case services.SeverityWarning:
		c.printf("%s\n", warningText(message))
	default:
		c.printf("%s\n", infoText(message))
	}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

const barWidth = 20

func progressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * barWidth / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat("-", barWidth-filled), percent)
}
