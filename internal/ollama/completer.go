// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"sync"
)

// Params are the generation parameters of one completion.
type Params struct {
	MaxTokens     int
	Temperature   float64
	TopP          float64
	TopK          int
	RepeatPenalty float64
	Stop          []string
}

// DefaultParams returns the parameters the bot was tuned with.
func DefaultParams() Params {
	return Params{
		MaxTokens:     256,
		Temperature:   0.35,
		TopP:          0.9,
		TopK:          50,
		RepeatPenalty: 1.15,
	}
}

// Options converts p to the Ollama request options.
func (p Params) Options() *Options {
	return &Options{
		Temperature:   p.Temperature,
		TopK:          p.TopK,
		TopP:          p.TopP,
		RepeatPenalty: p.RepeatPenalty,
		NumPredict:    p.MaxTokens,
		Stop:          p.Stop,
	}
}

// Completer generates text with one model.
type Completer struct {
	client *Client

	mu    sync.RWMutex
	model string
}

// NewCompleter binds client to model. An empty model selects the client's
// default.
func NewCompleter(client *Client, model string) *Completer {
	if model == "" {
		model = client.config.DefaultModel
	}
	return &Completer{client: client, model: model}
}

// Model returns the model used for completions.
func (c *Completer) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel switches the model used for later completions.
func (c *Completer) SetModel(model string) {
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

// Complete returns the raw completion of prompt.
func (c *Completer) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	resp, err := c.client.Generate(ctx, c.Model(), prompt, p.Options())
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}
