// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations as JSON session documents.
//
// A session document has the shape
//
//	{"model_path": "...", "history": [{"role": "user", "content": "..."}, ...]}
//
// Loading is lenient: a history that is not a list loads as empty, entries
// that are not objects are skipped, and missing or non-string fields are
// coerced to text. Writes are atomic (see util.AtomicWriteFile).
//
// Store keeps a directory of named sessions for the /save and /load
// commands; DefaultHistoryPath is the autosave target.
package storage
