// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - HTTP API command.
//
// Command: serve [--addr HOST:PORT]
// Aliases: server
//
// Examples:
//   raspdbot serve
//   raspdbot serve --addr 0.0.0.0:8080 --corpus qa.jsonl

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/server"
	"github.com/jeranaias/raspdbot/internal/session"
)

// HandleServeCommand serves the HTTP API until ctx is cancelled.
func HandleServeCommand(ctx context.Context, cfg *config.Config, args Args) error {
	parser := NewArgParser(args.Raw)
	addr := parser.FlagOrDefault("addr", cfg.Server.Addr)

	app, err := NewApp(ctx, cfg, args, AppOptions{CheckModel: true, Watch: true})
	if err != nil {
		return err
	}
	defer app.Close()

	srv := newServer(app, addr)
	if !args.Quiet {
		mode := "plain"
		if app.Source != nil {
			mode = fmt.Sprintf("retrieval, %d pairs", len(app.Source.Pairs()))
		}
		fmt.Fprintf(os.Stderr, "%s http://%s (%s, %s)\n",
			SuccessStyle.Render("Serving on"), srv.Addr(), app.Completer.Model(), mode)
	}
	return srv.Run(ctx)
}

// newServer wires the conversation manager to the HTTP server.
func newServer(app *App, addr string) *server.Server {
	server.Version = Version

	cfg := app.Config
	manager := session.NewManager(app.NewEngine, session.Config{
		IdleTimeout:      cfg.IdleTimeout(),
		MaxConversations: cfg.Sessions.MaxConversations,
		OnExchange: func(id, input string, reply chat.Reply, _ error) {
			if terr := app.Transcript.RecordExchange(context.Background(), id, input, string(reply.Kind), reply.Text); terr != nil {
				app.Logger.Warn("TRANSCRIPT_WRITE failed", "session_id", id, "error", terr)
			}
		},
	})

	return server.New(manager, server.Options{
		Addr:      addr,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Logger:    app.Logger,
	})
}
