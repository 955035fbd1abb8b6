package config

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

func (c *Config) Validate() error {
	if c.Backend.URL == "" && c.Backend.Origin == "" {
		return errors.New("one of backend.url or backend.origin is required")
	}

	if c.Submit.Timeout <= 0 {
		return errors.New("submit.timeout must be positive")
	}

	if c.Poll.Timeout <= 0 {
		return errors.New("poll.timeout must be positive")
	}
	if c.Poll.Interval <= 0 {
		return errors.New("poll.interval must be positive")
	}
	if c.Poll.RetryDelay < 0 {
		return errors.New("poll.retry_delay must not be negative")
	}
	if c.Poll.MaxRetries < 0 {
		return fmt.Errorf("poll.max_retries (%d) must not be negative", c.Poll.MaxRetries)
	}
	if c.Poll.MaxElapsed <= 0 {
		return errors.New("poll.max_elapsed must be positive")
	}

	// zero disables the cap
	if c.Retrieval.MaxBytes < 0 {
		return errors.New("retrieval.max_bytes must not be negative")
	}
	if c.Retrieval.DownloadDir == "" {
		return errors.New("retrieval.download_dir is required")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if _, err := ResolveBaseURL(c); err != nil {
		return err
	}
	return nil
}
