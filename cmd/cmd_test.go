package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubeconv/internal/apihandlers"
	"tubeconv/internal/models"
	"tubeconv/internal/services"
	"tubeconv/internal/store"
)

func init() {
	color.NoColor = true
}

func TestConsole_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	job := models.NewJob("t1", models.ConvertRequest{SourceURL: "https://youtu.be/abc", Format: models.FormatMP4, Quality: "best"}, time.Now())
	c.SetSubmitEnabled(false)
	c.Submitted(job)
	require.NoError(t, job.ApplyProgress(models.JobStatusProcessing, 40, "Converting"))
	c.Progress(job)
	c.Progress(job) // unchanged, not printed again
	require.NoError(t, job.Complete("https://cdn/x.mp4", "Video Title.mp4", "", time.Now()))
	c.Completed(job)
	c.Notify("File downloaded successfully: Video Title.mp4", services.SeveritySuccess)
	c.SetSubmitEnabled(true)

	expected := "Submitting conversion request...\n" +
		"Job t1 accepted (mp4, best)\n" +
		"[########------------]  40% Converting\n" +
		"Conversion complete: Video Title.mp4\n" +
		"Direct link: https://cdn/x.mp4\n" +
		"File downloaded successfully: Video Title.mp4\n"
	assert.Equal(t, expected, buf.String())
}

func TestConsole_Failed(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Failed("Please enter a valid YouTube URL.")
	assert.Equal(t, "Error: Please enter a valid YouTube URL.\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[--------------------]   0%", progressBar(-5))
	assert.Equal(t, "[####################] 100%", progressBar(100))
}

func TestRenderStatusTable(t *testing.T) {
	var buf bytes.Buffer
	p := 42.4
	renderStatusTable(&buf, "t1", &store.StatusResponse{Status: "processing", Progress: &p, Message: "Converting"})

	out := buf.String()
	assert.Contains(t, out, "TASK ID")
	assert.Contains(t, out, "processing")
	assert.Contains(t, out, "42%")
	assert.Contains(t, out, "Converting")
}

func newCommandBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	sandbox := apihandlers.NewSandbox(
		apihandlers.WithIDFunc(func() string { return "t1" }),
		apihandlers.WithTitle("Song: Live"),
		apihandlers.WithArtifact([]byte("ID3")),
	)
	sandbox.Register(router.Group("/api"))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func runRoot(t *testing.T, backendURL string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "backend:\n  url: " + backendURL + "\npoll:\n  interval: 10ms\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	srv := newCommandBackend(t)
	dir := t.TempDir()

	out, err := runRoot(t, srv.URL, "convert", "https://youtu.be/dQw4w9WgXcQ", "-f", "mp3", "-q", "192", "-o", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Job t1 accepted (mp3, 192)")
	assert.Contains(t, out, "File downloaded successfully: Song Live dQw4w9WgXcQ.mp3")
	data, err := os.ReadFile(filepath.Join(dir, "Song Live dQw4w9WgXcQ.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(data))
}

func TestConvertCommand_InvalidURL(t *testing.T) {
	srv := newCommandBackend(t)

	out, err := runRoot(t, srv.URL, "convert", "https://example.com/video", "-o", t.TempDir())

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, out, "Error: Please enter a valid YouTube URL.")
}

func TestStatusAndDoctorCommands(t *testing.T) {
	srv := newCommandBackend(t)

	_, err := runRoot(t, srv.URL, "convert", "https://youtu.be/dQw4w9WgXcQ", "-o", t.TempDir())
	require.NoError(t, err)

	out, err := runRoot(t, srv.URL, "status", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, srv.URL+"/api/file/t1")

	out, err = runRoot(t, srv.URL, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Service status: healthy")
	assert.Contains(t, out, "Version: sandbox")
	assert.Contains(t, out, "Active tasks: 0")
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "http://127.0.0.1:1", "version")
	require.NoError(t, err)
	assert.Equal(t, "tubeconv dev\n", out)
}
