// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	core "github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/storage"
	"github.com/jeranaias/raspdbot/internal/ui/styles"
	"github.com/jeranaias/raspdbot/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the window.
func (m Model) View() string {
	if !m.ready {
		return "Starting RaspDbot..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// refresh re-renders the transcript into the viewport and follows it.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("RaspDbot-Star")
	if m.theme.GetLayoutMode() == styles.LayoutNarrow {
		return m.theme.Header.Width(m.width).Render(title)
	}
	mode := "plain"
	if m.engine.Retrieval() {
		mode = "retrieval"
	}
	sub := m.theme.HeaderSubtitle.Render(" " + m.engine.Model() + " · " + mode)
	return m.theme.Header.Width(m.width).Render(title + sub)
}

func (m Model) renderEntries() string {
	if len(m.entries) == 0 {
		return m.theme.SystemNotice.Render(m.engine.Persona().GreetingReply)
	}

	p := m.engine.Persona()
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if e.role == storage.RoleUser {
			b.WriteString(m.theme.UserLabel.Render(p.UserLabel + ":"))
		} else {
			b.WriteString(m.theme.BotLabel.Render(p.BotLabel + ":"))
		}
		b.WriteString("\n")
		b.WriteString(m.textStyle(e.kind).Render(util.WrapWidth(e.text, width)))
	}
	return b.String()
}

func (m Model) textStyle(kind core.Kind) lipgloss.Style {
	switch kind {
	case core.KindError:
		return m.theme.ErrorText
	case core.KindClarify, core.KindRefusal:
		return m.theme.ClarifyText
	default:
		return m.theme.MessageText
	}
}

func (m Model) renderInput() string {
	if m.busy {
		return m.theme.InputContainer.Width(m.width - 2).Render(
			m.spinner.View() + " " + m.theme.ThinkingText.Render("Thinking..."))
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	if m.notice != "" {
		return m.theme.StatusBar.Width(m.width).Render(util.OneLine(m.notice))
	}
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}
