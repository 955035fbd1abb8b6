package config

import (
	"fmt"
	"net/url"
	"strings"
)

const localBackendURL = "http://localhost:5000/api"

// ResolveBaseURL returns the API root every backend path is appended to.
// An explicit backend.url wins. Otherwise a loopback origin talks to the
// development server on port 5000 and any other origin serves the API
// itself under /api.
func ResolveBaseURL(c *Config) (string, error) {
	if raw := strings.TrimSpace(c.Backend.URL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", fmt.Errorf("backend.url %q is not an absolute URL", raw)
		}
		return strings.TrimRight(raw, "/") + "/api", nil
	}

	origin, err := url.Parse(strings.TrimSpace(c.Backend.Origin))
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return "", fmt.Errorf("backend.origin %q is not an absolute URL", c.Backend.Origin)
	}

	switch origin.Hostname() {
	case "localhost", "127.0.0.1":
		return localBackendURL, nil
	}
	return origin.Scheme + "://" + origin.Host + "/api", nil
}
