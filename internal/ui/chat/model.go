// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/export"
	"github.com/jeranaias/raspdbot/internal/storage"
	"github.com/jeranaias/raspdbot/internal/ui/styles"
)

// =============================================================================
// TRANSCRIPT ENTRIES
// =============================================================================

// entry is one line of the visible transcript. Replies that are not part
// of the engine history (greetings, clarifications, errors) only live here.
type entry struct {
	role string
	text string
	kind core.Kind
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configure the chat window.
type Options struct {
	// HistoryPath is where ctrl+s saves, ctrl+l loads and autosave writes.
	HistoryPath string

	// ExportPath is the ctrl+e target (default: HistoryPath with .txt).
	ExportPath string

	// Autosave writes the history after every reply and on quit.
	Autosave bool

	// Context bounds every question (default: context.Background()).
	Context context.Context
}

// Model is the Bubble Tea model for the chat window.
type Model struct {
	engine *core.Engine
	theme  *styles.Theme
	opts   Options
	keys   KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	entries []entry
	busy    bool
	notice  string

	width  int
	height int
	ready  bool
}

// New creates a chat window over engine. The engine's current history,
// if any, is shown immediately.
func New(engine *core.Engine, theme *styles.Theme, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.ExportPath == "" && opts.HistoryPath != "" {
		opts.ExportPath = strings.TrimSuffix(opts.HistoryPath, ".json") + ".txt"
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.Placeholder = "Ask about RaspDbot-Star..."
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = styles.LineSpinner.Spinner()
	sp.Style = theme.Spinner

	m := Model{
		engine:   engine,
		theme:    theme,
		opts:     opts,
		keys:     DefaultKeyMap(),
		viewport: viewport.New(80, 20),
		input:    ti,
		spinner:  sp,
	}
	m.entries = entriesFromHistory(engine.History())
	m.refresh()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Busy reports whether a question is being answered.
func (m Model) Busy() bool {
	return m.busy
}

// Notice returns the current status line message.
func (m Model) Notice() string {
	return m.notice
}

// Engine returns the conversation engine.
func (m Model) Engine() *core.Engine {
	return m.engine
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg), nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width, m.height = msg.Width, msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Header, input and status bar take five lines.
	vpHeight := msg.Height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = vpHeight
	m.input.Width = msg.Width - len(m.input.Prompt) - 4
	m.ready = true
	m.refresh()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.autosave()
		return m, tea.Quit

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Everything else waits for the running question.
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NewChat):
		m.engine.Reset()
		m.entries = nil
		m.notice = m.engine.Persona().NewChat
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.notice = m.save()
		return m, nil

	case key.Matches(msg, m.keys.Load):
		m.notice = m.load()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Export):
		m.notice = m.exportText()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.notice = m.engine.Persona().EmptyPrompt
		return m, nil
	}

	m.input.Reset()
	m.entries = append(m.entries, entry{role: storage.RoleUser, text: text})
	m.busy = true
	m.notice = ""
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, askCmd(m.opts.Context, m.engine, text))
}

func (m Model) handleReply(msg ReplyMsg) Model {
	m.busy = false
	m.entries = append(m.entries, entry{
		role: storage.RoleAssistant,
		text: msg.Reply.Text,
		kind: msg.Reply.Kind,
	})
	if msg.Err != nil {
		m.notice = "request failed"
	}
	m.autosave()
	m.refresh()
	return m
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (m *Model) autosave() {
	if !m.opts.Autosave || m.opts.HistoryPath == "" {
		return
	}
	if err := storage.SaveFile(m.opts.HistoryPath, m.engine.Document()); err != nil {
		m.notice = fmt.Sprintf("autosave failed: %v", err)
	}
}

func (m *Model) save() string {
	if m.opts.HistoryPath == "" {
		return "no history file configured"
	}
	if err := storage.SaveFile(m.opts.HistoryPath, m.engine.Document()); err != nil {
		return fmt.Sprintf("save failed: %v", err)
	}
	return "saved to " + m.opts.HistoryPath
}

func (m *Model) load() string {
	if m.opts.HistoryPath == "" {
		return "no history file configured"
	}
	doc, err := storage.LoadFile(m.opts.HistoryPath)
	if err != nil {
		return fmt.Sprintf("load failed: %v", err)
	}
	m.engine.Restore(doc)
	m.entries = entriesFromHistory(doc.History)
	return fmt.Sprintf("loaded %d messages", len(doc.History))
}

func (m *Model) exportText() string {
	if m.opts.ExportPath == "" {
		return "no export file configured"
	}
	exporter := export.NewTextExporter(m.engine.Persona())
	if err := export.ToFile(m.engine.Document(), exporter, m.opts.ExportPath); err != nil {
		return fmt.Sprintf("export failed: %v", err)
	}
	return "exported to " + m.opts.ExportPath
}

func entriesFromHistory(history []storage.Message) []entry {
	entries := make([]entry, 0, len(history))
	for _, msg := range history {
		kind := core.KindAnswer
		if msg.Role == storage.RoleUser {
			kind = ""
		}
		entries = append(entries, entry{role: msg.Role, text: msg.Content, kind: kind})
	}
	return entries
}
