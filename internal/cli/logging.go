// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// logging.go - Diagnostic logging setup.

package cli

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a text logger writing to w. verbose forces debug and
// quiet forces error; otherwise level ("debug", "info", "warn", "error")
// applies.
func NewLogger(w io.Writer, level string, verbose, quiet bool) *slog.Logger {
	lvl := ParseLevel(level)
	switch {
	case verbose:
		lvl = slog.LevelDebug
	case quiet:
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps a level name to a slog level. Unknown names map to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
