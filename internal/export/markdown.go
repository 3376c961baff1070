// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	Title     string
	UserLabel string
	BotLabel  string

	// IncludeMetadata adds a front matter block with the model and counts.
	IncludeMetadata bool

	// now is replaced in tests.
	now func() time.Time
}

// NewMarkdownExporter creates a Markdown exporter using the persona's labels.
func NewMarkdownExporter(p persona.Persona) *MarkdownExporter {
	return &MarkdownExporter{
		Title:           "RaspDbot conversation",
		UserLabel:       p.UserLabel,
		BotLabel:        p.BotLabel,
		IncludeMetadata: true,
		now:             time.Now,
	}
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(doc storage.Document) ([]byte, error) {
	var sb strings.Builder

	if e.IncludeMetadata {
		now := time.Now
		if e.now != nil {
			now = e.now
		}
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(e.Title)))
		if doc.ModelPath != "" {
			sb.WriteString(fmt.Sprintf("model: %s\n", escapeYAML(doc.ModelPath)))
		}
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(doc.History)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", now().Format(time.RFC3339)))
		sb.WriteString("generator: raspdbot\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(e.Title)))

	if len(doc.History) == 0 {
		sb.WriteString("*No messages.*\n")
		return []byte(sb.String()), nil
	}

	for i, msg := range doc.History {
		sb.WriteString(fmt.Sprintf("### %s\n\n", roleLabel(msg.Role, e.UserLabel, e.BotLabel)))
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if i < len(doc.History)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown; charset=utf-8"
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break formatting in headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values containing YAML special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
