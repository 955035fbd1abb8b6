package services

import (
	"context"
	"errors"
	"io"

	log "github.com/sirupsen/logrus"

	"tubeconv/internal/models"
	"tubeconv/internal/store"
	"tubeconv/internal/util"
)

const (
	msgRetrievalSuccess = "File downloaded successfully: "
	msgRetrievalWarning = "Automatic download failed. Use the manual download link."
)

var errNoArtifactURL = errors.New("job completed without a download URL")

// ArtifactRetriever fetches a finished artifact through the service's proxy
// endpoint and stores it locally. Exactly one notification is sent per call
// unless ctx is cancelled.
type ArtifactRetriever struct {
	client   store.JobClient
	files    store.FileStore
	notifier Notifier
	maxBytes int64 // 0 means unlimited
}

func NewArtifactRetriever(client store.JobClient, files store.FileStore, notifier Notifier, maxBytes int64) *ArtifactRetriever {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &ArtifactRetriever{client: client, files: files, notifier: notifier, maxBytes: maxBytes}
}

// Retrieve downloads artifactURL and saves it under the sanitized filename.
// Any failure is reported as a models.ErrRetrievalWarning; the job itself
// stays successful.
func (r *ArtifactRetriever) Retrieve(ctx context.Context, artifactURL, filename string) (*DeliveredFile, error) {
	name := util.SanitizeFilename(filename)
	logger := log.WithFields(log.Fields{"artifact_url": artifactURL, "filename": name})

	if artifactURL == "" {
		return nil, r.warn(logger, errNoArtifactURL)
	}

	body, err := r.client.ProxyDownload(ctx, artifactURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, r.warn(logger, err)
	}
	defer body.Close()

	var src io.Reader = body
	if r.maxBytes > 0 {
		src = &capReader{r: body, left: r.maxBytes}
	}

	path, size, err := r.files.Save(ctx, name, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, r.warn(logger, err)
	}

	logger.WithFields(log.Fields{"path": path, "bytes": size}).Info("artifact delivered")
	r.notifier.Notify(msgRetrievalSuccess+name, SeveritySuccess)
	return &DeliveredFile{Name: name, Path: path, Size: size}, nil
}

func (r *ArtifactRetriever) warn(logger *log.Entry, err error) error {
	logger.WithError(err).Warn("automatic retrieval failed")
	r.notifier.Notify(msgRetrievalWarning, SeverityWarning)
	return models.NewRetrievalWarning(msgRetrievalWarning, err)
}

// capReader fails with store.ErrTooLarge once more than left bytes are read.
type capReader struct {
	r    io.Reader
	left int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.left <= 0 {
		var probe [1]byte
		n, err := c.r.Read(probe[:])
		if n > 0 {
			return 0, store.ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}
