// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL.
//
// Features:
//   - Line editing and input history (peterh/liner)
//   - Slash commands: /new /load /save /export /sessions /history /help /quit
//   - Autosave to the history file after every turn and on exit
//   - Ctrl+C cancels the running question; at the prompt it exits

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/export"
	"github.com/jeranaias/raspdbot/internal/storage"
	"github.com/jeranaias/raspdbot/internal/transcript"
	"github.com/jeranaias/raspdbot/internal/util"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession is one interactive conversation and its persistence.
type ChatSession struct {
	Engine      *chat.Engine
	Out         io.Writer
	HistoryPath string
	Autosave    bool
	Markdown    bool
	Store       *storage.Store  // nil disables named sessions
	Transcript  *transcript.Log // nil disables the transcript
	SessionID   string
	Logger      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewChatSession builds a session over a new engine from app.
func NewChatSession(app *App, out io.Writer) *ChatSession {
	s := &ChatSession{
		Engine:      app.NewEngine(),
		Out:         out,
		HistoryPath: app.HistoryPath(),
		Autosave:    app.Config.Chat.Autosave,
		Markdown:    app.Config.Chat.Markdown && stdoutIsTerminal(),
		Transcript:  app.Transcript,
		SessionID:   uuid.NewString(),
		Logger:      app.Logger,
	}
	if store, err := app.Store(); err == nil {
		s.Store = store
	} else {
		app.Logger.Warn("SESSION_STORE disabled", "error", err)
	}
	return s
}

// HandleChatCommand runs the interactive chat.
func HandleChatCommand(ctx context.Context, cfg *config.Config, args Args) error {
	app, err := NewApp(ctx, cfg, args, AppOptions{CheckModel: true, Watch: true})
	if err != nil {
		return err
	}
	defer app.Close()

	session := NewChatSession(app, os.Stdout)
	if args.Resume {
		if msg, err := session.load(""); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", WarningStyle.Render("[Resume]"), err)
		} else {
			fmt.Println(DimStyle.Render(msg))
		}
	}
	if !args.Quiet {
		printWelcome(os.Stdout, app, session)
	}

	// Ctrl+C while a question runs cancels it; the prompt itself exits
	// through liner.ErrPromptAborted.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if session.CancelCurrent() {
				fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	input := NewChatCLI()
	defer input.Close()

	prompt := app.Persona.UserLabel + ": "
	for {
		line, err := input.ReadInput(prompt)
		if err != nil {
			// Ctrl+C, Ctrl+D or a closed stdin.
			fmt.Println()
			break
		}
		if session.Handle(ctx, line) {
			break
		}
	}

	session.Finish()
	return nil
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// Handle processes one input line and reports whether the user asked to
// quit.
func (s *ChatSession) Handle(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		return true
	}

	if strings.HasPrefix(input, "/") {
		quit, err := s.handleSlashCommand(input)
		if err != nil {
			fmt.Fprintf(s.Out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
		return quit
	}

	s.ask(ctx, input)
	return false
}

func (s *ChatSession) ask(ctx context.Context, input string) {
	reqCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	reply, err := s.Engine.Ask(reqCtx, input)
	if terr := s.Transcript.RecordExchange(ctx, s.SessionID, input, string(reply.Kind), reply.Text); terr != nil {
		s.logger().Warn("TRANSCRIPT_WRITE failed", "error", terr)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(s.Out, "\n%s %v\n\n", ErrorStyle.Render("[Error]"), err)
		return
	}
	writeReply(s.Out, s.Engine.Persona().BotLabel, reply, s.Markdown)
	s.autosave()
}

// CancelCurrent cancels the running question, if any.
func (s *ChatSession) CancelCurrent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	return true
}

// Finish autosaves on exit.
func (s *ChatSession) Finish() {
	s.autosave()
}

func (s *ChatSession) autosave() {
	if !s.Autosave || s.HistoryPath == "" {
		return
	}
	if err := storage.SaveFile(s.HistoryPath, s.Engine.Document()); err != nil {
		fmt.Fprintf(s.Out, "%s %v\n", WarningStyle.Render("[Autosave]"), err)
	}
}

func (s *ChatSession) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (quit, error).
func (s *ChatSession) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	command := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))

	switch command {
	case "/help", "/h", "/?", "/":
		printHelp(s.Out)

	case "/new", "/clear":
		s.Engine.Reset()
		s.SessionID = uuid.NewString()
		fmt.Fprintln(s.Out, DimStyle.Render(s.Engine.Persona().NewChat))

	case "/load":
		msg, err := s.load(arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.Out, SuccessStyle.Render(msg))

	case "/save":
		msg, err := s.save(arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.Out, SuccessStyle.Render(msg))

	case "/export":
		if arg == "" {
			return false, ErrMissingArgument("path", "/export chat.md")
		}
		path := util.ExpandHome(arg)
		exporter := export.ForPath(path, s.Engine.Persona())
		if err := export.ToFile(s.Engine.Document(), exporter, path); err != nil {
			return false, err
		}
		fmt.Fprintln(s.Out, SuccessStyle.Render("Exported to "+path))

	case "/sessions":
		if s.Store == nil {
			return false, errors.New("session store is not available")
		}
		metas, err := s.Store.List()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.Out, storage.FormatSessionList(metas))

	case "/history":
		printHistory(s.Out, s.Engine)

	case "/quit", "/q", "/exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
	return false, nil
}

// isSessionName reports whether arg names a stored session rather than a
// file path.
func (s *ChatSession) isSessionName(arg string) bool {
	return s.Store != nil && arg != "" &&
		!strings.ContainsAny(arg, `/\`) && filepath.Ext(arg) == "" && !strings.HasPrefix(arg, "~")
}

// load replaces the conversation with a saved one. The conversation is
// left untouched when the file cannot be read.
func (s *ChatSession) load(arg string) (string, error) {
	var doc storage.Document
	var err error
	source := arg
	switch {
	case s.isSessionName(arg):
		doc, err = s.Store.Load(arg)
	default:
		if source == "" {
			source = s.HistoryPath
		}
		source = util.ExpandHome(source)
		doc, err = storage.LoadFile(source)
	}
	if err != nil {
		return "", err
	}
	s.Engine.Restore(doc)
	return fmt.Sprintf("Loaded %d messages from %s", len(doc.History), source), nil
}

func (s *ChatSession) save(arg string) (string, error) {
	doc := s.Engine.Document()
	if s.isSessionName(arg) {
		name, err := s.Store.Save(arg, doc)
		if err != nil {
			return "", err
		}
		return "Saved session " + name, nil
	}

	path := arg
	if path == "" {
		path = s.HistoryPath
	}
	path = util.ExpandHome(path)
	if err := storage.SaveFile(path, doc); err != nil {
		return "", err
	}
	return "Saved to " + path, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func printWelcome(w io.Writer, app *App, s *ChatSession) {
	fmt.Fprintln(w, TitleStyle.Render("🤖 RaspDbot-Star Chat"))
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Model"), ValueStyle.Render(s.Engine.Model()))
	mode := "plain"
	if app.Source != nil {
		mode = fmt.Sprintf("retrieval (%d pairs)", len(app.Source.Pairs()))
	}
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Mode"), ValueStyle.Render(mode))
	fmt.Fprintln(w, DimStyle.Render("Type /help for commands, 'exit' to quit."))
	fmt.Fprintln(w)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Available Commands"))

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/new", "Start a new chat"},
		{"/load [path|name]", "Load history (default: autosave file)"},
		{"/save [path|name]", "Save history (default: autosave file)"},
		{"/export <path>", "Export as text, or markdown for .md"},
		{"/sessions", "List saved sessions"},
		{"/history", "Show the conversation"},
		{"/help", "Show this help"},
		{"/quit", "Exit (also: exit, quit, q)"},
	}
	for _, c := range commands {
		fmt.Fprintf(w, "  %s  %s\n", UserStyle.Render(fmt.Sprintf("%-18s", c.cmd)), DimStyle.Render(c.desc))
	}
	fmt.Fprintln(w)
}

func printHistory(w io.Writer, engine *chat.Engine) {
	history := engine.History()
	if len(history) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No messages yet."))
		return
	}
	p := engine.Persona()
	fmt.Fprintln(w)
	for _, m := range history {
		if m.Role == storage.RoleUser {
			fmt.Fprintf(w, "%s %s\n\n", UserStyle.Render(p.UserLabel+":"), m.Content)
		} else {
			fmt.Fprintf(w, "%s %s\n\n", BotStyle.Render(p.BotLabel+":"), m.Content)
		}
	}
	fmt.Fprintln(w, RenderSeparator(40))
}
