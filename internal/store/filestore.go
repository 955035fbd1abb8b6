package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"tubeconv/internal/util"
)

// maxNameAttempts bounds the "name (n).ext" search for a free path.
const maxNameAttempts = 1000

var _ FileStore = (*LocalFileStore)(nil)

// LocalFileStore writes delivered artifacts into one directory. Writes go
// to "<name>.part" first and are renamed into place once complete; an
// existing file is never overwritten, the new one gets a " (n)" suffix.
type LocalFileStore struct {
	dir string
}

func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir %s: %w", dir, err)
	}
	return &LocalFileStore{dir: dir}, nil
}

func (s *LocalFileStore) Dir() string { return s.dir }

func (s *LocalFileStore) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	base := filepath.Base(name)
	if base != name || base == "." || base == ".." || base == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	finalPath, err := s.freePath(base)
	if err != nil {
		return "", 0, err
	}
	tmpPath := finalPath + ".part"

	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", tmpPath, err)
	}

	n, copyErr := io.Copy(out, contextReader{ctx: ctx, r: r})
	closeErr := out.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.WithError(rmErr).Warnf("could not remove partial file %s", tmpPath)
		}
		return "", 0, fmt.Errorf("write %s: %w", base, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("finalize %s: %w", base, err)
	}
	log.WithFields(log.Fields{"path": finalPath, "bytes": n}).Debug("artifact written")
	return finalPath, n, nil
}

func (s *LocalFileStore) freePath(name string) (string, error) {
	stem, ext := util.SplitExtension(name)
	candidate := name
	for i := 1; i <= maxNameAttempts; i++ {
		path := filepath.Join(s.dir, candidate)
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			if _, perr := os.Stat(path + ".part"); errors.Is(perr, os.ErrNotExist) {
				return path, nil
			}
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
	}
	return "", fmt.Errorf("no free file name for %q in %s", name, s.dir)
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
