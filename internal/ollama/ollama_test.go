// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfigDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	assert.Equal(t, DefaultBaseURL, c.Config().BaseURL)
	assert.Equal(t, DefaultTimeout, c.Config().Timeout)
	assert.Equal(t, DefaultModel, c.Config().DefaultModel)

	c = NewClientWithConfig(nil)
	assert.Equal(t, DefaultBaseURL, c.Config().BaseURL)
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	})
	assert.NoError(t, c.CheckRunning(context.Background()))
}

func TestCheckRunningNotReachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url, Timeout: time.Second})
	err := c.CheckRunning(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotRunning(err))
	assert.True(t, errors.Is(err, ErrNotRunning))
	assert.False(t, IsTimeout(err))
}

func TestCheckRunningBadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := c.CheckRunning(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

// =============================================================================
// MODEL TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(ListModelsResponse{Models: []ModelInfo{
			{Name: "raspdbot-star:latest", Size: 4 * 1024 * 1024 * 1024},
			{Name: "raspdbot-car:latest", Size: 512 * 1024 * 1024},
		}})
	})

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "raspdbot-star:latest", models[0].Name)
	assert.Equal(t, "4.0 GB", models[0].FormatSize())
	assert.Equal(t, "512.0 MB", models[1].FormatSize())
}

func TestGetModelNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetModel(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsModelNotFound(err))
	assert.False(t, c.ModelExists(context.Background(), "missing"))
}

func TestModelExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ShowModelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "raspdbot-star", req.Name)
		json.NewEncoder(w).Encode(ShowModelResponse{Details: ModelDetails{Family: "llama"}})
	})
	assert.True(t, c.ModelExists(context.Background(), "raspdbot-star"))
}

// =============================================================================
// GENERATION TESTS
// =============================================================================

func TestCompleterSendsRawPrompt(t *testing.T) {
	var got GenerateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(GenerateResponse{Response: " It has a camera. ", Done: true})
	})

	comp := NewCompleter(c, "raspdbot-star")
	params := DefaultParams()
	params.Stop = []string{"\n### User:"}

	text, err := comp.Complete(context.Background(), "### System:\nsys\n\n### Assistant:\n", params)
	require.NoError(t, err)
	assert.Equal(t, " It has a camera. ", text)

	assert.Equal(t, "raspdbot-star", got.Model)
	assert.True(t, got.Raw)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.Equal(t, 256, got.Options.NumPredict)
	assert.Equal(t, 0.35, got.Options.Temperature)
	assert.Equal(t, 0.9, got.Options.TopP)
	assert.Equal(t, 50, got.Options.TopK)
	assert.Equal(t, 1.15, got.Options.RepeatPenalty)
	assert.Equal(t, []string{"\n### User:"}, got.Options.Stop)
}

func TestCompleterModel(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{DefaultModel: "fallback"})
	comp := NewCompleter(c, "")
	assert.Equal(t, "fallback", comp.Model())
	comp.SetModel("other")
	assert.Equal(t, "other", comp.Model())
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		message string
	}{
		{"model missing", http.StatusNotFound, "", IsModelNotFound, "model not found"},
		{"api error body", http.StatusInternalServerError, `{"error":"out of memory"}`, nil, "out of memory"},
		{"bare status", http.StatusBadGateway, "", nil, "502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Generate(context.Background(), "m", "p", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			if tt.check != nil {
				assert.True(t, tt.check(err))
			}
		})
	}
}

func TestGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, "m", "p", nil)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestTokensPerSecond(t *testing.T) {
	r := GenerateResponse{EvalCount: 20, EvalDuration: int64(2 * time.Second)}
	assert.Equal(t, 10.0, r.TokensPerSecond())
	assert.Equal(t, 0.0, (&GenerateResponse{}).TokensPerSecond())
}
