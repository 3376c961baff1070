// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Exports a saved conversation.
//
// Command: export <file|session>
//
// Flags:
//   --format text|markdown   Output format (default: from --output extension, else text)
//   --output FILE            Write to FILE instead of stdout
//
// Examples:
//   raspdbot export ~/.raspdbot/history.json
//   raspdbot export demo --format markdown
//   raspdbot export demo --output demo.md

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/export"
	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/storage"
	"github.com/jeranaias/raspdbot/internal/util"
)

// HandleExportCommand exports a history file or a saved session.
func HandleExportCommand(cfg *config.Config, args Args) error {
	parser := NewArgParser(args.Raw)
	source := parser.Subcommand()
	if source == "" {
		source = cfg.Chat.HistoryPath
	}
	if source == "" {
		return ErrMissingArgument("session", "raspdbot export <file|session> [--format markdown] [--output FILE]")
	}

	p, err := persona.Get(cfg.Chat.Persona)
	if err != nil {
		return &ValidationError{Field: "persona", Value: cfg.Chat.Persona, Reason: err.Error()}
	}

	doc, err := loadDocument(cfg, source)
	if err != nil {
		return err
	}

	output := parser.Flag("output")
	format := parser.Flag("format")

	var exporter export.Exporter
	switch {
	case format != "":
		exporter, err = export.ForFormat(format, p)
		if err != nil {
			return &ValidationError{Field: "format", Value: format, Reason: err.Error(), Example: "--format markdown"}
		}
	case output != "":
		exporter = export.ForPath(output, p)
	default:
		exporter = export.NewTextExporter(p)
	}

	if output == "" {
		return writeExport(os.Stdout, doc, exporter)
	}
	path, err := outputPath(util.ExpandHome(output))
	if err != nil {
		return &ValidationError{Field: "output", Value: output, Reason: err.Error()}
	}
	if err := export.ToFile(doc, exporter, path); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Fprintln(os.Stderr, SuccessStyle.Render("Exported to "+path))
	}
	return nil
}

// loadDocument reads source as a file path, or as a saved session name
// when it has no extension and no path separator.
func loadDocument(cfg *config.Config, source string) (storage.Document, error) {
	if filepath.Ext(source) == "" && !strings.ContainsAny(source, `/\~`) {
		store, err := openStore(cfg)
		if err != nil {
			return storage.Document{}, err
		}
		doc, err := store.Load(source)
		if errors.Is(err, storage.ErrSessionNotFound) {
			return storage.Document{}, &NotFoundError{
				Resource: "session",
				ID:       source,
				Hint:     "List saved sessions with /sessions in chat",
			}
		}
		return doc, err
	}

	doc, err := storage.LoadFile(util.ExpandHome(source))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.Document{}, &NotFoundError{Resource: "history file", ID: source}
		}
		return storage.Document{}, err
	}
	return doc, nil
}

func writeExport(w io.Writer, doc storage.Document, exporter export.Exporter) error {
	content, err := exporter.Export(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

// outputPath resolves an export destination. It must not climb with ".."
// and must land under the home, working or temp directory.
func outputPath(path string) (string, error) {
	if strings.Contains(path, "..") {
		return "", errors.New("path traversal not allowed")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	for _, root := range []string{home, cwd, os.TempDir()} {
		if root != "" && under(abs, root) {
			return abs, nil
		}
	}
	return "", errors.New("path must be within home, cwd, or temp directory")
}

// under reports whether path is root or below it. A sibling that only
// shares a name prefix ("/home/userX" for "/home/user") is not below.
func under(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
