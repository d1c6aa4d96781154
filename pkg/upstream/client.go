package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"meridian-hq/ganymede/pkg/relay"
)

// maxErrorBodyBytes bounds how much of a rejection payload is read.
const maxErrorBodyBytes = 64 * 1024

// Config contains the upstream endpoint configuration for the client.
type Config struct {
	// BaseURL is the base URL of the chat-completions API
	// (e.g. "https://api.openai.com/v1").
	BaseURL string

	// APIKey is the bearer credential. Its absence is reported as a
	// ConfigError before any upstream call.
	APIKey string

	// Model is the model identifier sent with every request.
	Model string

	// Temperature is the sampling temperature sent with every request.
	Temperature float64

	// MaxTokens caps the completion length.
	MaxTokens int

	// Timeout bounds the wait for response headers. It does not bound the
	// streaming body, which is governed by the invocation's context.
	Timeout time.Duration

	// MaxIdleConns and MaxIdleConnsPerHost tune the connection pool.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// Client opens streaming completion calls against one configured upstream.
// It is safe for concurrent use.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// completionRequest is the JSON body of the upstream call.
type completionRequest struct {
	Model       string          `json:"model"`
	Messages    []relay.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Stream      bool            `json:"stream"`
}

// NewClient creates a client with a pooled transport.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	}

	// No overall client timeout: it would sever long-lived streaming bodies.
	// The invocation context governs the stream's lifetime.
	return &Client{
		config: cfg,
		client: &http.Client{Transport: transport},
		logger: logger.With("component", "upstream"),
	}
}

// OpenStream issues the streaming completion request and returns the response
// body. The caller owns the body and must close it exactly once. The system
// directive, when present, is sent as the first message.
func (c *Client) OpenStream(ctx context.Context, req *relay.ChatRequest) (io.ReadCloser, error) {
	if c.config.APIKey == "" {
		return nil, &ConfigError{Field: "api_key", Message: "missing API key"}
	}

	messages := make([]relay.Message, 0, len(req.Messages)+1)
	if req.System != nil {
		messages = append(messages, *req.System)
	}
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(completionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("opening upstream stream",
		"url", url,
		"model", c.config.Model,
		"messages", len(messages),
	)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()

		rej := &RejectionError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorPayload(payload),
		}
		c.logger.Warn("upstream rejected request",
			"status", resp.StatusCode,
			"message", rej.Message,
		)
		return nil, rej
	}

	return resp.Body, nil
}

// decodeErrorPayload extracts the most useful message from an error body.
// It tries the OpenAI-style {"error":{"message":...}} envelope, then a bare
// {"message":...}, then the raw text, and falls back to a generic message.
func decodeErrorPayload(payload []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if text := strings.TrimSpace(string(payload)); text != "" {
		return text
	}
	return "upstream returned no error details"
}
