// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Full-screen chat window.
//
// Command: tui
//
// Examples:
//   raspdbot tui
//   raspdbot tui --resume --corpus qa.jsonl

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/storage"
	uichat "github.com/jeranaias/raspdbot/internal/ui/chat"
	"github.com/jeranaias/raspdbot/internal/ui/styles"
)

// HandleTUICommand runs the bubbletea chat window.
func HandleTUICommand(ctx context.Context, cfg *config.Config, args Args) error {
	if !stdinIsTerminal() || !stdoutIsTerminal() {
		return &ValidationError{
			Field:   "terminal",
			Reason:  "the tui needs an interactive terminal",
			Example: "raspdbot chat",
		}
	}

	// Logs would corrupt the alternate screen.
	app, err := NewApp(ctx, cfg, args, AppOptions{CheckModel: true, Watch: true, LogOutput: io.Discard})
	if err != nil {
		return err
	}
	defer app.Close()

	engine := app.NewEngine()
	historyPath := app.HistoryPath()
	if args.Resume && historyPath != "" {
		doc, err := storage.LoadFile(historyPath)
		switch {
		case err == nil:
			engine.Restore(doc)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("resume: %w", err)
		}
	}

	model := uichat.New(engine, styles.NewTheme(), uichat.Options{
		HistoryPath: historyPath,
		Autosave:    cfg.Chat.Autosave,
		Context:     ctx,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
