// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the command handlers of
// raspdbot.
//
// # Key Types
//
//   - Command: enumeration of the available commands
//   - Args: parsed global flags and command arguments
//   - App: config, persona, Ollama client, corpus and transcript shared by
//     the front ends
//   - ChatSession: one interactive REPL conversation
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAskCommand(ctx, cfg, args)
//	case cli.CmdChat:
//	    err = cli.HandleChatCommand(ctx, cfg, args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - chat: interactive REPL (default)
//   - ask: single question
//   - tui: full-screen chat window
//   - serve: HTTP API
//   - models: models on the Ollama server
//   - export: saved conversation as text or markdown
//   - transcript: recent transcript entries
//   - config: show and edit the configuration
//
// # Exit Codes
//
//	0  success
//	1  general error
//	2  usage error
//	3  configuration or corpus error
//	5  Ollama unreachable
//	7  model, session or corpus not found
//	8  timeout
package cli
