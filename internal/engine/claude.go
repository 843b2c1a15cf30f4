package engine

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
)

// ClaudeClient implements ModelClient using the Anthropic Messages API.
type ClaudeClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	baseURL   string
	timeout   time.Duration
}

// ClaudeOption configures the Claude client.
type ClaudeOption func(*ClaudeClient)

// WithClaudeModel sets the model name.
func WithClaudeModel(model string) ClaudeOption {
	return func(c *ClaudeClient) { c.model = model }
}

// WithClaudeBaseURL overrides the API endpoint.
func WithClaudeBaseURL(url string) ClaudeOption {
	return func(c *ClaudeClient) { c.baseURL = url }
}

// WithClaudeTimeout sets the per-request timeout.
func WithClaudeTimeout(d time.Duration) ClaudeOption {
	return func(c *ClaudeClient) { c.timeout = d }
}

// NewClaudeClient creates a new Anthropic Claude model client.
func NewClaudeClient(apiKey string, opts ...ClaudeOption) *ClaudeClient {
	c := &ClaudeClient{
		model:     "claude-sonnet-4-20250514",
		maxTokens: 2048,
		timeout:   60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	clientOpts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: c.timeout}),
	}
	if c.baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(c.baseURL))
	}
	c.client = anthropic.NewClient(apiKey, clientOpts...)
	return c
}

// Complete sends a prompt to the Anthropic Messages API and returns the first
// text block of the response.
func (c *ClaudeClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", errors.New("no text content in response")
}
