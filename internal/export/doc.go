// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders saved conversations for people to read.
//
// # Key Types
//
//   - Exporter: converts a storage.Document to bytes
//   - TextExporter: one "label: content" block per message
//   - MarkdownExporter: headed sections with optional metadata
//
// # Usage
//
//	exp := export.NewTextExporter(persona.Default())
//	err := export.ToFile(doc, exp, "chat.txt")
package export
