// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for raspdbot.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - OllamaConfig: Completion server and model
//   - CorpusConfig, RetrievalConfig: Reference data and the clarification policy
//   - GenerationConfig: Sampling parameters
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RASPDBOT_*), including those set by a .env file
//   - ~/.raspdbot/config.toml
//   - ~/.raspdbot/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.Ollama.Model
//	threshold := cfg.Retrieval.Threshold
package config
