// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for raspdbot.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdAsk
	CmdModels
	CmdExport
	CmdTranscript
	CmdConfig
	CmdServe
	CmdTUI
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdChat:       "chat",
	CmdAsk:        "ask",
	CmdModels:     "models",
	CmdExport:     "export",
	CmdTranscript: "transcript",
	CmdConfig:     "config",
	CmdServe:      "serve",
	CmdTUI:        "tui",
	CmdVersion:    "version",
	CmdHelp:       "help",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Model      string
	Corpus     string
	Persona    string
	Verbose    bool
	Quiet      bool
	JSON       bool
	Resume     bool

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Unknown is set when the first argument is not a command.
	Unknown string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `raspdbot - expert chatbot for the RaspDbot-Star autonomous car

Answers questions with a local Ollama model. With a JSONL corpus it
retrieves the closest reference questions, asks for clarification when
a question looks out of scope, and refuses after two attempts.

Usage:
  raspdbot                      Interactive chat (default)
  raspdbot chat                 Interactive chat
  raspdbot ask "question"       Ask a single question
  raspdbot tui                  Full-screen chat window
  raspdbot serve [--addr A]     HTTP API
  raspdbot models               List models on the Ollama server
  raspdbot export <session>     Export a saved session
    --format text|markdown        Output format (default: from --output extension)
    --output FILE                 Write to FILE instead of stdout
  raspdbot transcript           Show recent transcript entries
    --session ID                  Only one conversation
    --limit N                     Number of entries (default: 50)
  raspdbot config [show|path|init|get|set|keys]
  raspdbot version
  raspdbot help

Global Flags:
  --config FILE     Config file (default: ~/.raspdbot/config.toml)
  --model NAME      Ollama model
  --corpus FILE     JSONL corpus (enables retrieval)
  --persona NAME    Persona: en, vi
  --resume          Load the autosaved history before chatting
  --json            JSON output (ask, models, transcript, config, version)
  -v, --verbose     Debug logging to stderr
  -q, --quiet       Only errors on stderr

Chat Commands:
  /new              Start a new chat
  /load [path]      Load history (default: autosave file)
  /save [path]      Save history (default: autosave file)
  /export <path>    Export as text or markdown (.md)
  /sessions         List saved sessions
  /history          Show the conversation
  /help             Show commands
  /quit             Exit (also: exit, quit, q)

Environment:
  RASPDBOT_OLLAMA_URL, RASPDBOT_MODEL, RASPDBOT_CORPUS, RASPDBOT_PERSONA,
  RASPDBOT_THRESHOLD, RASPDBOT_LOG_LEVEL and others; see 'raspdbot config keys'.
  A .env file in the working directory is loaded first.
`

// PrintUsage prints the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "raspdbot %s (commit %s, built %s, %s)\n", Version, GitCommit, BuildDate, runtime.Version())
}

// VersionInfo returns the version command data.
func VersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command line arguments without the program name.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdChat, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsed

	case "ask":
		parsed.Query = strings.TrimSpace(strings.Join(remaining, " "))
		return CmdAsk, parsed

	case "tui":
		return CmdTUI, parsed

	case "serve", "server":
		return CmdServe, parsed

	case "models":
		return CmdModels, parsed

	case "export":
		return CmdExport, parsed

	case "transcript", "log":
		return CmdTranscript, parsed

	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed

	case "version", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		parsed.Unknown = cmd
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Everything after "--" is passed through untouched.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	valueFlags := map[string]*string{
		"--config":  &parsed.ConfigPath,
		"--model":   &parsed.Model,
		"--corpus":  &parsed.Corpus,
		"--persona": &parsed.Persona,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}

		switch arg {
		case "-v", "--verbose":
			parsed.Verbose = true
			continue
		case "-q", "--quiet":
			parsed.Quiet = true
			continue
		case "--json":
			parsed.JSON = true
			continue
		case "--resume":
			parsed.Resume = true
			continue
		}

		if dst, ok := valueFlags[arg]; ok {
			if i+1 < len(args) {
				i++
				*dst = args[i]
			}
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok {
			if dst, known := valueFlags[name]; known {
				*dst = value
				continue
			}
		}

		remaining = append(remaining, arg)
	}

	return remaining, parsed
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}
