package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tubeconv/internal/models"
)

// RequestIDHeader carries a per-request id so client and service logs can be joined.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failed response is read looking for an error message.
const maxErrorBody = 64 * 1024

// HTTPJobClient is the JobClient for the conversion service's JSON API.
var _ JobClient = (*HTTPJobClient)(nil)

type HTTPJobClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPJobClient returns a client rooted at baseURL (for example
// http://localhost:5000/api). A nil httpClient uses a client without a
// global timeout; deadlines come from the request context.
func NewHTTPJobClient(baseURL string, httpClient *http.Client) (*HTTPJobClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("job client base URL %q is not absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPJobClient{baseURL: strings.TrimRight(baseURL, "/"), client: httpClient}, nil
}

func (c *HTTPJobClient) SubmitJob(ctx context.Context, req models.ConvertRequest) (*SubmitResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/download", req)
	if err != nil {
		return nil, err
	}
	var out SubmitResponse
	if err := c.decode(ctx, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPJobClient) JobStatus(ctx context.Context, jobID string) (*StatusResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/status/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}
	var out StatusResponse
	if err := c.decode(ctx, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPJobClient) ProxyDownload(ctx context.Context, artifactURL string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodPost, "/proxy-download", proxyRequest{DownloadURL: artifactURL})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, readHTTPError(resp)
	}
	return resp.Body, nil
}

func (c *HTTPJobClient) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var out HealthResponse
	if err := c.decode(ctx, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPJobClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	log.WithFields(log.Fields{"method": method, "path": path, "request_id": requestID}).Debug("backend request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(ctx, method+" "+path, err)
	}
	return resp, nil
}

// decode reads a JSON body. Non-2xx answers become *HTTPError.
func (c *HTTPJobClient) decode(ctx context.Context, resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		if ctx.Err() != nil {
			return classify(ctx, "read response", err)
		}
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	herr := &HTTPError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		herr.Message = payload.Error
	}
	return herr
}

// classify maps a deadline on the request to models.ErrRequestTimeout.
// Caller cancellation is passed through untouched.
func classify(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %w", op, models.ErrRequestTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
