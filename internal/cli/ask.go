// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command.
//
// Command: ask [question]
//
// Examples:
//   raspdbot ask "What sensors does the car use?"
//   raspdbot ask --json "How is the battery charged?"
//   echo "What is the top speed?" | raspdbot ask

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/config"
)

// maxStdinQuestion bounds a question read from a pipe.
const maxStdinQuestion = 64 * 1024

// HandleAskCommand answers one question and exits. Without a question on
// the command line the question is read from stdin.
func HandleAskCommand(ctx context.Context, cfg *config.Config, args Args) error {
	question := args.Query
	if question == "" && !stdinIsTerminal() {
		q, err := readQuestion(os.Stdin)
		if err != nil {
			return err
		}
		question = q
	}
	if question == "" {
		return ErrMissingArgument("question", `raspdbot ask "What sensors does the car use?"`)
	}

	app, err := NewApp(ctx, cfg, args, AppOptions{CheckModel: true})
	if err != nil {
		return err
	}
	defer app.Close()

	return runAsk(ctx, app.NewEngine(), question, args, os.Stdout, cfg.Chat.Markdown && stdoutIsTerminal())
}

// runAsk sends question through engine and prints the reply.
func runAsk(ctx context.Context, engine *chat.Engine, question string, args Args, w io.Writer, markdown bool) error {
	start := time.Now()
	reply, err := engine.Ask(ctx, question)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			Question: question,
			Answer:   reply.Text,
			Kind:     string(reply.Kind),
			Score:    reply.Score,
			Model:    engine.Model(),
			Duration: time.Since(start).Round(time.Millisecond).String(),
		}).Write(w)
	}

	if args.Quiet {
		fmt.Fprintln(w, reply.Text)
		return nil
	}
	writeReply(w, engine.Persona().BotLabel, reply, markdown)
	return nil
}

func readQuestion(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(bufio.NewReader(r), maxStdinQuestion))
	if err != nil {
		return "", fmt.Errorf("read question from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
