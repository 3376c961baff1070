// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation engine.
//
// An Engine owns one conversation. Ask short-circuits empty input and
// greetings without touching history or the model. The plain variant also
// short-circuits questions about live telemetry. The retrieval variant
// instead scores the question against the corpus and lets the
// clarification policy decide between answering, asking the user to
// confirm, and refusing.
//
// Questions that reach the model are appended to history, rendered with
// the prompt template and completed. The completion is cut at leaked
// section markers, pronouns are fixed, and an empty result becomes the
// persona's fallback.
//
// An Engine serializes its own calls; session.Manager adds a busy check
// for callers that must not queue.
package chat
