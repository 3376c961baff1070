// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes RaspDbot conversations over HTTP.
//
// # Endpoints
//
//   - GET    /health                     - Liveness and conversation count
//   - POST   /v1/sessions                - Start a conversation
//   - GET    /v1/sessions                - List conversations
//   - GET    /v1/sessions/{id}           - Conversation info and history
//   - POST   /v1/sessions/{id}/messages  - Ask a question
//   - POST   /v1/sessions/{id}/reset     - Clear a conversation
//   - DELETE /v1/sessions/{id}           - Remove a conversation
//
// A conversation answers one request at a time; a second request while
// it is answering gets 409 Conflict.
//
// # Middleware
//
//   - Panic recovery
//   - Request logging through log/slog
//   - Per-client rate limiting (golang.org/x/time/rate)
//
// # Usage
//
//	srv := server.New(manager, server.Options{Addr: "127.0.0.1:8080"})
//	if err := srv.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package server
