// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	"github.com/jeranaias/raspdbot/internal/ollama"
)

// MockCompleter is a Completer for tests. It returns Response, or Err
// when set, and records every call.
type MockCompleter struct {
	Response string
	Err      error
	// Gate, when non-nil, blocks each call until it receives or is closed.
	Gate chan struct{}

	mu      sync.Mutex
	prompts []string
	params  []ollama.Params
}

// Ensure MockCompleter implements Completer.
var _ Completer = (*MockCompleter)(nil)

// Complete records the call and returns the canned result.
func (m *MockCompleter) Complete(ctx context.Context, prompt string, p ollama.Params) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.params = append(m.params, p)
	m.mu.Unlock()

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Calls returns how many completions were requested.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or "".
func (m *MockCompleter) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// LastParams returns the most recent parameters.
func (m *MockCompleter) LastParams() ollama.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.params) == 0 {
		return ollama.Params{}
	}
	return m.params[len(m.params)-1]
}
