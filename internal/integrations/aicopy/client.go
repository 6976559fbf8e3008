// Package aicopy generates marketing copy through an OpenAI-compatible
// chat-completion endpoint. Malformed model output falls back to templated
// copy instead of failing the request
package aicopy

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/launchkite/launchkite/internal/content"
)

const defaultModel = "gpt-4o-mini"

const systemPrompt = `You are a marketing copywriter. Respond with a single JSON object ` +
	`containing exactly these string fields: "subject", "headline", "body", "cta". ` +
	`Do not wrap the JSON in markdown fences or add any other text.`

// Request describes the campaign the copy is for
type Request struct {
	CampaignName string
	DesignTitle  string
	Tone         string
	Audience     string
	Notes        string
}

// Result is the generated copy plus whether the templated fallback was used
type Result struct {
	Copy     content.Copy
	Fallback bool
}

// Client generates campaign copy for one user's OpenAI-compatible account
type Client struct {
	openai  openai.Client
	model   string
	catalog *content.Catalog
}

// Option customizes a Client
type Option func(*Client)

// WithModel overrides the completion model
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithCatalog overrides the fallback template catalog
func WithCatalog(catalog *content.Catalog) Option {
	return func(c *Client) {
		c.catalog = catalog
	}
}

// NewClient creates a copy generation client. An empty baseURL targets the
// OpenAI API; set it to use any compatible endpoint
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	requestOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(baseURL))
	}

	client := &Client{
		openai:  openai.NewClient(requestOpts...),
		model:   defaultModel,
		catalog: content.DefaultCatalog(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// TestConnection verifies the key with a minimal completion round trip
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.openai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Reply with the word ok."),
		},
	})
	if err != nil {
		return fmt.Errorf("completion probe failed: %w", err)
	}
	return nil
}

// GenerateCopy asks the model for campaign copy. A provider error propagates
// to the caller; output that is not the expected JSON shape is logged and
// replaced with the templated fallback
func (c *Client) GenerateCopy(ctx context.Context, req Request) (*Result, error) {
	completion, err := c.openai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(c.userPrompt(req)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("copy generation failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		log.Printf("[AICOPY]: Empty completion for campaign '%s', using fallback copy", req.CampaignName)
		return c.fallback(req), nil
	}

	parsed, err := parseCopy(completion.Choices[0].Message.Content)
	if err != nil {
		log.Printf("[AICOPY]: Unparseable completion for campaign '%s' (%v), using fallback copy", req.CampaignName, err)
		return c.fallback(req), nil
	}

	return &Result{Copy: *parsed}, nil
}

func (c *Client) fallback(req Request) *Result {
	return &Result{
		Copy:     c.catalog.Fallback(req.CampaignName, req.Tone),
		Fallback: true,
	}
}

// userPrompt assembles the campaign brief sent to the model
func (c *Client) userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write email marketing copy for the campaign %q.\n", req.CampaignName)
	if req.DesignTitle != "" {
		fmt.Fprintf(&b, "The campaign is built around a design titled %q.\n", req.DesignTitle)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", req.Tone)
	}
	if req.Audience != "" {
		fmt.Fprintf(&b, "Audience: %s.\n", req.Audience)
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "Additional notes: %s.\n", req.Notes)
	}
	return b.String()
}

// parseCopy decodes model output into copy, tolerating markdown fences the
// prompt asks the model to omit but some models add anyway
func parseCopy(raw string) (*content.Copy, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed content.Copy
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, err
	}

	if parsed.Subject == "" || parsed.Body == "" {
		return nil, fmt.Errorf("completion missing required fields")
	}

	return &parsed, nil
}
