// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/storage"
	"github.com/jeranaias/raspdbot/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for conversation exporters.
type Exporter interface {
	// Export converts a conversation to the target format.
	Export(doc storage.Document) ([]byte, error)

	// FileExtension returns the file extension, e.g. ".txt".
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// ForFormat returns the exporter for a format name ("text" or "markdown").
func ForFormat(format string, p persona.Persona) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text", "txt":
		return NewTextExporter(p), nil
	case "markdown", "md":
		return NewMarkdownExporter(p), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want text or markdown)", format)
	}
}

// ForPath picks an exporter from the file extension of path.
func ForPath(path string, p persona.Persona) Exporter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return NewMarkdownExporter(p)
	default:
		return NewTextExporter(p)
	}
}

// ToFile exports doc to path, creating parent directories as needed.
func ToFile(doc storage.Document, exporter Exporter, path string) error {
	content, err := exporter.Export(doc)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	path = util.ExpandHome(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter writes each message as "label: content", separated by a
// blank line.
type TextExporter struct {
	UserLabel string
	BotLabel  string

	// Width wraps message lines at this many display columns. Zero
	// leaves lines as they are.
	Width int
}

// NewTextExporter creates a text exporter using the persona's labels.
func NewTextExporter(p persona.Persona) *TextExporter {
	return &TextExporter{UserLabel: p.UserLabel, BotLabel: p.BotLabel}
}

// Export renders doc as plain text. An empty history exports as an empty
// file.
func (e *TextExporter) Export(doc storage.Document) ([]byte, error) {
	blocks := make([]string, 0, len(doc.History))
	for _, m := range doc.History {
		block := roleLabel(m.Role, e.UserLabel, e.BotLabel) + ": " + m.Content
		blocks = append(blocks, util.WrapWidth(block, e.Width))
	}
	return []byte(strings.Join(blocks, "\n\n")), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain; charset=utf-8"
}

// roleLabel maps anything that is not a user message to the bot label.
func roleLabel(role, user, bot string) string {
	if role == storage.RoleUser {
		return user
	}
	return bot
}
