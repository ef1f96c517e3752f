// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

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
	"unicode/utf8"

	"github.com/jeranaias/llmchat/internal/util"
)

// DefaultEndpoint is the chat completions URL of the local LLM server.
const DefaultEndpoint = "http://localhost:1234/v1/chat/completions"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the LLM client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeCanceled
	ErrTypeInvalidResponse
)

// IsConnectionError reports whether err means the endpoint could not be
// reached or refused the request.
func IsConnectionError(err error) bool {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Type == ErrTypeConnection || ce.Type == ErrTypeTimeout
}

// IsInvalidResponse reports whether err means the endpoint answered with
// something other than a chat completion.
func IsInvalidResponse(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeInvalidResponse
}

// IsCanceled reports whether err came from a cancelled context.
func IsCanceled(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeCanceled
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the LLM client.
type ClientConfig struct {
	// Endpoint is the chat completions URL (default: DefaultEndpoint)
	Endpoint string

	// Options are the sampling parameters sent with every request
	Options Options

	// Timeout bounds a single request. Zero means no timeout; a long
	// completion on a slow machine is allowed to take as long as it needs.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint: DefaultEndpoint,
		Options:  TunedOptions(),
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends conversations to an OpenAI-compatible chat completions
// endpoint and returns the first choice's message content.
//
// Example:
//
//	client := llm.NewClient()
//	reply := client.Send(ctx, history, "Hello")
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Options.MaxTokens == 0 {
		config.Options.MaxTokens = 2048
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Endpoint returns the chat completions URL this client posts to.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Options returns the sampling options sent with every request.
func (c *Client) Options() Options {
	return c.config.Options
}

// ModelsURL returns the /models URL that sits next to the chat endpoint.
func (c *Client) ModelsURL() string {
	base := strings.TrimSuffix(c.config.Endpoint, "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	return base + "/models"
}

// =============================================================================
// CHAT
// =============================================================================

// Complete sends history followed by a new user message and returns the
// content of the first choice. history is not modified.
func (c *Client) Complete(ctx context.Context, history []Message, message string) (string, error) {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, NewUserMessage(message))

	body, err := json.Marshal(NewChatRequest(messages, c.config.Options))
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	util.Debugf("[llm] POST %s messages=%d", c.config.Endpoint, len(messages))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status",
			Cause:   fmt.Errorf("HTTP Error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}

	content, err := decodeContent(raw)
	if err != nil {
		return "", err
	}

	util.Debugf("[llm] reply chars=%d elapsed=%s", len(content), time.Since(start).Round(time.Millisecond))
	return content, nil
}

// Send is Complete with failures rendered as text. The returned string is
// either the assistant's reply or a human-readable error message starting
// with "Error:", so the caller can display and record it either way.
func (c *Client) Send(ctx context.Context, history []Message, message string) string {
	reply, err := c.Complete(ctx, history, message)
	if err != nil {
		util.Warnf("[llm] request failed: %v", err)
		return c.FormatError(err)
	}
	return reply
}

// FormatError renders a request failure the way it is shown to the user.
func (c *Client) FormatError(err error) string {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return "Error: " + err.Error()
	}

	cause := ce.Message
	if ce.Cause != nil {
		cause = ce.Cause.Error()
	}

	switch ce.Type {
	case ErrTypeConnection, ErrTypeTimeout:
		return fmt.Sprintf("Error: Could not connect to LLM at %s. Make sure it's running.\n%s", c.config.Endpoint, cause)
	case ErrTypeInvalidResponse:
		return fmt.Sprintf("Error: Unexpected response format from LLM.\n%s", cause)
	case ErrTypeCanceled:
		return "Error: Request cancelled."
	default:
		return "Error: " + ce.Error()
	}
}

// decodeContent extracts choices[0].message.content from a response body.
func decodeContent(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response", Cause: errors.New("response body is not valid UTF-8")}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	if len(chatResp.Choices) == 0 {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response", Cause: errors.New("response has no choices")}
	}
	msg := chatResp.Choices[0].Message
	if msg == nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response", Cause: errors.New("choice has no message")}
	}
	if msg.Content == nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response", Cause: errors.New("message has no content")}
	}

	return *msg.Content, nil
}

// classifyTransportError maps an error from the HTTP round trip to a ClientError.
func classifyTransportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeCanceled, Message: "request cancelled", Cause: err}
	default:
		return &ClientError{Type: ErrTypeConnection, Message: "connection failed", Cause: err}
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// =============================================================================
// MODELS
// =============================================================================

// ListModels returns the models the server reports at /v1/models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ModelsURL(), nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status",
			Cause:   fmt.Errorf("HTTP Error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	var listResp ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return listResp.Data, nil
}

// CheckRunning verifies that the server is reachable and answering.
func (c *Client) CheckRunning(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}
