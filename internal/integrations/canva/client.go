// Package canva wraps the Canva Connect REST API: design browsing, design
// export with polling, and the OAuth2 token exchange used by the connect
// flow and the token refresh path
package canva

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/launchkite/launchkite/internal/integrations"
)

const (
	serviceName    = "canva"
	defaultBaseURL = "https://api.canva.com/rest"

	// Export jobs complete quickly, so polling uses a flat interval with a
	// hard attempt cap instead of backoff
	exportPollInterval = 2 * time.Second
	exportPollAttempts = 30
)

var (
	// ErrExportFailed is returned when the provider reports a terminal
	// failed export job
	ErrExportFailed = errors.New("design export failed")

	// ErrExportTimeout is returned when an export job does not reach a
	// terminal state within the polling budget
	ErrExportTimeout = errors.New("design export timed out")
)

// Client calls the Canva Connect API on behalf of one user
type Client struct {
	accessToken  string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	pollAttempts int
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPolling overrides the export polling interval and attempt cap
func WithPolling(interval time.Duration, attempts int) Option {
	return func(c *Client) {
		c.pollInterval = interval
		c.pollAttempts = attempts
	}
}

// NewClient creates a Canva client with the given access token
func NewClient(accessToken string, opts ...Option) *Client {
	client := &Client{
		accessToken:  accessToken,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: exportPollInterval,
		pollAttempts: exportPollAttempts,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Design represents one Canva design
type Design struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updated_at"`
	Thumbnail struct {
		URL string `json:"url"`
	} `json:"thumbnail"`
	URLs struct {
		EditURL string `json:"edit_url"`
	} `json:"urls"`
}

// DesignList is one page of designs plus the continuation token for the next
type DesignList struct {
	Items        []Design `json:"items"`
	Continuation string   `json:"continuation"`
}

// exportJob mirrors the provider's async export job resource
type exportJob struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	URLs   []string `json:"urls"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends one authenticated request and decodes the response into out
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("canva request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return integrations.ErrorFromResponse(serviceName, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode canva response: %w", err)
		}
	}

	return nil
}

// TestConnection verifies the access token by fetching the current user
func (c *Client) TestConnection(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/users/me", nil, nil)
}

// ListDesigns returns one page of the user's designs. Pass the continuation
// token from a previous page to fetch the next one
func (c *Client) ListDesigns(ctx context.Context, continuation string) (*DesignList, error) {
	path := "/v1/designs"
	if continuation != "" {
		path += "?continuation=" + url.QueryEscape(continuation)
	}

	var list DesignList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetDesign fetches a single design by id
func (c *Client) GetDesign(ctx context.Context, designID string) (*Design, error) {
	var envelope struct {
		Design Design `json:"design"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/designs/"+url.PathEscape(designID), nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Design, nil
}

// CreateExport starts an export job for a design and returns the job id
func (c *Client) CreateExport(ctx context.Context, designID, format string) (string, error) {
	if format == "" {
		format = "png"
	}

	body := map[string]any{
		"design_id": designID,
		"format":    map[string]string{"type": format},
	}

	var envelope struct {
		Job exportJob `json:"job"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/exports", body, &envelope); err != nil {
		return "", err
	}

	return envelope.Job.ID, nil
}

// GetExport fetches the current state of an export job
func (c *Client) GetExport(ctx context.Context, jobID string) (*exportJob, error) {
	var envelope struct {
		Job exportJob `json:"job"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/exports/"+url.PathEscape(jobID), nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Job, nil
}

// WaitForExport polls an export job until it reaches a terminal state and
// returns the first result URL. A failed job returns ErrExportFailed; a job
// that never resolves within the attempt cap returns ErrExportTimeout
func (c *Client) WaitForExport(ctx context.Context, jobID string) (string, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}

		job, err := c.GetExport(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch job.Status {
		case "success":
			if len(job.URLs) == 0 {
				return "", fmt.Errorf("%w: job succeeded without a result URL", ErrExportFailed)
			}
			return job.URLs[0], nil
		case "failed":
			if job.Error != nil {
				return "", fmt.Errorf("%w: %s", ErrExportFailed, job.Error.Message)
			}
			return "", ErrExportFailed
		}
	}

	return "", ErrExportTimeout
}

// ExportDesign starts an export and waits for its result URL
func (c *Client) ExportDesign(ctx context.Context, designID, format string) (string, error) {
	jobID, err := c.CreateExport(ctx, designID, format)
	if err != nil {
		return "", err
	}
	return c.WaitForExport(ctx, jobID)
}
