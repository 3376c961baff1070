// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/raspdbot/internal/chat"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ReplyMsg carries the engine's answer back to the window.
type ReplyMsg struct {
	Reply core.Reply
	Err   error
}

// askCmd runs one question on the engine in the background.
func askCmd(ctx context.Context, engine *core.Engine, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := engine.Ask(ctx, text)
		return ReplyMsg{Reply: reply, Err: err}
	}
}
