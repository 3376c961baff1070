// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona holds the bot's voice: every canned reply, the word
// lists used to short-circuit greetings, telemetry questions and
// confirmations, the system instructions, and the labels used when a
// conversation is exported.
//
// Two personas are built in: "en" (the default) and "vi".
//
// Lexicon entries are phrases. A phrase matches when its words appear as
// consecutive whole words of the normalized input, so "hi" matches
// "hi there" but not "which".
package persona
