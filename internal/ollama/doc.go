// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama server,
// the text-completion service behind the bot.
//
// Prompts are sent already rendered, so generation uses /api/generate in
// raw mode: Ollama applies no chat template of its own.
//
// # Key Types
//
//   - Client: HTTP client for health checks, model listing and generation
//   - Completer: binds a Client to one model and exposes Complete
//   - Params: generation parameters (token budget, sampling, stop set)
//   - ClientError: categorized errors with IsNotRunning/IsTimeout/IsModelNotFound
//
// # Usage
//
//	client := ollama.NewClient()
//	if err := client.CheckRunning(ctx); err != nil {
//	    return err
//	}
//	c := ollama.NewCompleter(client, "raspdbot-star")
//	text, err := c.Complete(ctx, prompt, ollama.DefaultParams())
package ollama
