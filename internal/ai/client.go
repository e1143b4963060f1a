package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
	defaultBaseURL   = "https://api.anthropic.com"
	apiVersion       = "2023-06-01"
)

// ErrUpstream wraps every failure of the remote text-generation call,
// including timeouts and a missing API key.
var ErrUpstream = errors.New("upstream failure")

// Request is a single-turn generation request.
type Request struct {
	System string
	Prompt string
}

// Generator produces assistant text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// KeyFunc resolves the API key for a call. It is consulted on every call so
// a key saved in settings takes effect without a restart. An empty key with
// a nil error means no key is configured.
type KeyFunc func(ctx context.Context) (string, error)

// StaticKey returns a KeyFunc that always yields key.
func StaticKey(key string) KeyFunc {
	return func(context.Context) (string, error) { return key, nil }
}

// Config configures a Client.
type Config struct {
	APIKey     KeyFunc
	Model      string
	MaxTokens  int
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the Claude Messages API.
type Client struct {
	apiKey    KeyFunc
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
}

var _ Generator = (*Client)(nil)

// New creates a Client, filling unset fields with defaults.
func New(cfg Config) *Client {
	c := &Client{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    cfg.HTTPClient,
	}
	if c.apiKey == nil {
		c.apiKey = StaticKey("")
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 2 * time.Minute}
	}
	return c
}

// Generate sends req as a single user turn and returns the reply text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	key, err := c.apiKey(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: resolving API key: %w", ErrUpstream, err)
	}
	if key == "" {
		return "", fmt.Errorf("%w: API key not configured. Please add your Anthropic API key in Settings", ErrUpstream)
	}

	body, err := json.Marshal(apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    req.System,
		Messages: []apiMessage{{
			Role:    "user",
			Content: []apiContentBlock{{Type: "text", Text: req.Prompt}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %w", ErrUpstream, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", key)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: calling Claude API: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%w: API error (%d): %s", ErrUpstream, resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("%w: API error (%d): %s", ErrUpstream, resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", ErrUpstream, err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, ""), nil
}

// --- Claude API types ---

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
