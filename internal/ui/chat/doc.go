// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the RaspDbot chat window for the TUI.
//
// The window is a Bubble Tea model with a scrolling transcript, a single
// line input and a spinner. Each question runs as one background command;
// while it runs the window is busy and ignores input and actions.
//
// # Key Bindings
//
//   - Enter:     send the question
//   - Ctrl+N:    start a new chat
//   - Ctrl+S:    save the conversation to the history file
//   - Ctrl+L:    load the history file
//   - Ctrl+E:    export the conversation as text
//   - PgUp/PgDn: scroll the transcript
//   - Ctrl+C/Esc: quit (autosaves)
//
// # Usage
//
//	m := chat.New(engine, styles.NewTheme(), chat.Options{HistoryPath: path, Autosave: true})
//	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
package chat
