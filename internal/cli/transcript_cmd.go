// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transcript_cmd.go - Shows the chat transcript.
//
// Command: transcript
// Aliases: log
//
// Flags:
//   --session ID   Only entries of one conversation
//   --limit N      Number of entries (default: 50)
//
// Examples:
//   raspdbot transcript
//   raspdbot transcript --limit 10 --json

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/transcript"
	"github.com/jeranaias/raspdbot/internal/util"
)

const defaultTranscriptLimit = 50

// HandleTranscriptCommand prints the most recent transcript entries.
func HandleTranscriptCommand(ctx context.Context, cfg *config.Config, args Args) error {
	if cfg.Transcript.Path == "" {
		return WrapError(fmt.Errorf("transcript is disabled"), "set transcript.path in the config to enable it")
	}

	parser := NewArgParser(args.Raw)
	limit := defaultTranscriptLimit
	if parser.HasFlag("limit") {
		n, err := ParseIntWithValidation(parser.Flag("limit"), "limit")
		if err != nil {
			return &ValidationError{Field: "limit", Value: parser.Flag("limit"), Reason: err.Error(), Example: "--limit 20"}
		}
		limit = n
	}

	log, err := transcript.Open(util.ExpandHome(cfg.Transcript.Path))
	if err != nil {
		return err
	}
	defer log.Close()

	entries, err := log.Recent(ctx, parser.Flag("session"), limit)
	if err != nil {
		return err
	}
	return writeTranscript(os.Stdout, entries, args.JSON)
}

func writeTranscript(w io.Writer, entries []transcript.Entry, asJSON bool) error {
	if asJSON {
		if entries == nil {
			entries = []transcript.Entry{}
		}
		return NewJSONResponse("transcript", entries).Write(w)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No transcript entries."))
		return nil
	}

	for _, e := range entries {
		stamp := DimStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		session := DimStyle.Render(util.TruncateRunes(e.SessionID, 8))
		switch e.Role {
		case "user":
			fmt.Fprintf(w, "%s %s %s %s\n", stamp, session, UserStyle.Render("user"), util.OneLine(e.Content))
		default:
			label := e.Role
			if e.Kind != "" {
				label += "/" + e.Kind
			}
			fmt.Fprintf(w, "%s %s %s %s\n", stamp, session, BotStyle.Render(label), util.OneLine(e.Content))
		}
	}
	return nil
}
