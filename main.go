// raspdbot - expert chatbot for the RaspDbot-Star autonomous car.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/raspdbot/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if args.Unknown != "" {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args.Unknown)
		cli.PrintUsage(os.Stderr)
		os.Exit(cli.ExitUsageError)
	}

	if err := run(cmd, args); err != nil {
		cli.HandleErrorAndExit(err, args.JSON)
	}
}

func run(cmd cli.Command, args cli.Args) error {
	// Commands that need no configuration.
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return nil
	case cli.CmdVersion:
		if args.JSON {
			return cli.NewJSONResponse("version", cli.VersionInfo()).Write(os.Stdout)
		}
		cli.PrintVersion(os.Stdout)
		return nil
	case cli.CmdConfig:
		return cli.HandleConfigCommand(args, os.Stdout)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	switch cmd {
	case cli.CmdChat:
		return cli.HandleChatCommand(ctx, cfg, args)
	case cli.CmdAsk:
		return cli.HandleAskCommand(ctx, cfg, args)
	case cli.CmdTUI:
		return cli.HandleTUICommand(ctx, cfg, args)
	case cli.CmdServe:
		return cli.HandleServeCommand(ctx, cfg, args)
	case cli.CmdModels:
		return cli.HandleModelsCommand(ctx, cfg, args)
	case cli.CmdExport:
		return cli.HandleExportCommand(cfg, args)
	case cli.CmdTranscript:
		return cli.HandleTranscriptCommand(ctx, cfg, args)
	default:
		cli.PrintUsage(os.Stderr)
		return nil
	}
}

// signalContext cancels on SIGTERM, and on Ctrl+C for the commands that
// do not handle it themselves. The chat REPL uses Ctrl+C to cancel one
// question.
func signalContext(cmd cli.Command) (context.Context, context.CancelFunc) {
	sigs := []os.Signal{syscall.SIGTERM}
	if cmd != cli.CmdChat && cmd != cli.CmdTUI {
		sigs = append(sigs, os.Interrupt)
	}
	return signal.NotifyContext(context.Background(), sigs...)
}
