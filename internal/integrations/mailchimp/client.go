// Package mailchimp wraps the Mailchimp Marketing API operations the
// dashboard needs: audience lookup, campaign creation, content, send and
// the post-send report
package mailchimp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/launchkite/launchkite/internal/integrations"
)

const serviceName = "mailchimp"

// Client calls the Mailchimp Marketing API for one account
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests)
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

// NewClient creates a Mailchimp client. The server prefix ("us1", "us19")
// selects the datacenter host the account lives on
func NewClient(apiKey, serverPrefix string, opts ...Option) *Client {
	client := &Client{
		apiKey:     apiKey,
		baseURL:    fmt.Sprintf("https://%s.api.mailchimp.com/3.0", serverPrefix),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Audience represents one Mailchimp list
type Audience struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// Report represents the email performance report for one campaign
type Report struct {
	EmailsSent   int `json:"emails_sent"`
	AbuseReports int `json:"abuse_reports"`
	Unsubscribed int `json:"unsubscribed"`
	Opens        struct {
		OpensTotal  int     `json:"opens_total"`
		UniqueOpens int     `json:"unique_opens"`
		OpenRate    float64 `json:"open_rate"`
	} `json:"opens"`
	Clicks struct {
		ClicksTotal            int     `json:"clicks_total"`
		UniqueSubscriberClicks int     `json:"unique_subscriber_clicks"`
		ClickRate              float64 `json:"click_rate"`
	} `json:"clicks"`
	Bounces struct {
		HardBounces int `json:"hard_bounces"`
		SoftBounces int `json:"soft_bounces"`
	} `json:"bounces"`
}

// BounceRate derives the bounce fraction from the report totals
func (r *Report) BounceRate() float64 {
	if r.EmailsSent == 0 {
		return 0
	}
	return float64(r.Bounces.HardBounces+r.Bounces.SoftBounces) / float64(r.EmailsSent)
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
	// Mailchimp Basic auth ignores the username
	req.SetBasicAuth("anystring", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailchimp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return integrations.ErrorFromResponse(serviceName, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode mailchimp response: %w", err)
		}
	}

	return nil
}

// TestConnection verifies the API key against the ping endpoint
func (c *Client) TestConnection(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

// ListAudiences returns the account's lists
func (c *Client) ListAudiences(ctx context.Context) ([]Audience, error) {
	var envelope struct {
		Lists []Audience `json:"lists"`
	}
	if err := c.do(ctx, http.MethodGet, "/lists", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Lists, nil
}

// CampaignSettings carries the sender and subject fields for a new campaign
type CampaignSettings struct {
	SubjectLine string `json:"subject_line"`
	Title       string `json:"title"`
	FromName    string `json:"from_name"`
	ReplyTo     string `json:"reply_to"`
}

// CreateCampaign creates a regular campaign targeting one audience and
// returns its id
func (c *Client) CreateCampaign(ctx context.Context, audienceID string, settings CampaignSettings) (string, error) {
	body := map[string]any{
		"type":       "regular",
		"recipients": map[string]string{"list_id": audienceID},
		"settings":   settings,
	}

	var campaign struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/campaigns", body, &campaign); err != nil {
		return "", err
	}

	return campaign.ID, nil
}

// SetContent sets the HTML body of a campaign
func (c *Client) SetContent(ctx context.Context, campaignID, html string) error {
	body := map[string]string{"html": html}
	return c.do(ctx, http.MethodPut, "/campaigns/"+campaignID+"/content", body, nil)
}

// Send triggers delivery of a campaign
func (c *Client) Send(ctx context.Context, campaignID string) error {
	return c.do(ctx, http.MethodPost, "/campaigns/"+campaignID+"/actions/send", nil, nil)
}

// GetReport fetches the performance report for a sent campaign
func (c *Client) GetReport(ctx context.Context, campaignID string) (*Report, error) {
	var report Report
	if err := c.do(ctx, http.MethodGet, "/reports/"+campaignID, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// IsAlreadySent reports whether a Send failure means the campaign was
// already delivered. Callers treat that case as success, not failure
func IsAlreadySent(err error) bool {
	provErr, ok := integrations.AsError(err)
	if !ok || provErr.Service != serviceName {
		return false
	}
	return strings.Contains(strings.ToLower(provErr.Message), "already sent")
}
