// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package corpus loads the reference question/answer pairs used for
// retrieval.
//
// The corpus file is newline-delimited JSON. Each record is matched
// against the following field pairs in order, and the first one present
// wins:
//
//	{"prompt": "...", "completion": "..."}
//	{"question": "...", "answer": "..."}
//	{"instruction": "...", "response": "..."}
//	{"input": "...", "output": "..."}
//	{"messages": [{"role": "user", "content": "..."}, {"role": "assistant", "content": "..."}]}
//
// Lines that are not JSON and records without a usable pair are skipped
// with a warning. A corpus is an immutable snapshot; Source and Watcher
// swap whole snapshots when the file changes on disk.
package corpus
