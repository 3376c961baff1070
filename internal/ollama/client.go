// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Default connection settings.
const (
	DefaultBaseURL = "http://127.0.0.1:11434"
	DefaultTimeout = 120 * time.Second
	DefaultModel   = "raspdbot-star"
)

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL. Uses the IPv4 loopback address
	// rather than localhost to avoid IPv6 resolution issues.
	BaseURL string

	// Timeout bounds every request, generation included. Generation on a
	// Raspberry Pi is slow, so the default is generous.
	Timeout time.Duration

	// DefaultModel is used when a call names no model.
	DefaultModel string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		DefaultModel: DefaultModel,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API. It is safe for
// concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
// Zero values are replaced with defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.DefaultModel == "" {
		config.DefaultModel = DefaultModel
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Config returns the client configuration.
func (c *Client) Config() *ClientConfig {
	return c.config
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable and running.
func (c *Client) CheckRunning(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from Ollama: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves all available models from Ollama.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Models, nil
}

// GetModel retrieves information about a specific model.
func (c *Client) GetModel(ctx context.Context, name string) (*ShowModelResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/show", ShowModelRequest{Name: name})
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ClientError{Type: ErrTypeModelNotFound, Message: "model not found: " + name}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to get model: " + resp.Status,
		}
	}

	var result ShowModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}

// ModelExists checks if a model is available locally.
func (c *Client) ModelExists(ctx context.Context, model string) bool {
	_, err := c.GetModel(ctx, model)
	return err == nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate runs a non-streaming completion of an already rendered prompt.
func (c *Client) Generate(ctx context.Context, model, prompt string, opts *Options) (*GenerateResponse, error) {
	if model == "" {
		model = c.config.DefaultModel
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/generate", GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Raw:     true,
		Options: opts,
	})
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ClientError{Type: ErrTypeModelNotFound, Message: "model not found: " + model}
	}
	if resp.StatusCode != http.StatusOK {
		var ollamaErr OllamaError
		if err := json.NewDecoder(resp.Body).Decode(&ollamaErr); err == nil && ollamaErr.Error != "" {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: ollamaErr.Error}
		}
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "generate request failed: " + resp.Status,
		}
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// do sends a request with an optional JSON body and maps transport
// failures to ClientError sentinels.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isNetTimeout(err) {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		return nil, &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running at " + c.config.BaseURL, Cause: err}
	}
	return resp, nil
}

func isNetTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
