// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Terminal rendering of replies, and the terminal facts it
// depends on: whether stdin and stdout are terminals, the wrap width and
// the color profile.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/raspdbot/internal/chat"
)

const (
	fallbackWidth = 80
	narrowestWrap = 40
)

func isTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

func stdinIsTerminal() bool  { return isTerminal(os.Stdin) }
func stdoutIsTerminal() bool { return isTerminal(os.Stdout) }

// wrapWidth is the width replies are wrapped to on stdout.
func wrapWidth() int {
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		cols = 0
	}
	return clampWidth(cols)
}

func clampWidth(cols int) int {
	switch {
	case cols <= 0:
		return fallbackWidth
	case cols < narrowestWrap:
		return narrowestWrap
	default:
		return cols
	}
}

// colorProfile honors NO_COLOR (https://no-color.org) first, then
// FORCE_COLOR, then asks termenv about stdout.
func colorProfile(tty bool) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if os.Getenv("FORCE_COLOR") != "" {
		if p := termenv.ColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	}
	if !tty {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func renderMarkdown(content string) string {
	markdownRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrapWidth()-4),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}
	out, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// replyStyle returns the style for the text of a reply kind.
func replyStyle(kind chat.Kind) lipgloss.Style {
	switch kind {
	case chat.KindClarify, chat.KindRefusal:
		return ClarifyStyle
	case chat.KindError:
		return ErrorStyle
	default:
		return ValueStyle
	}
}

// writeReply prints one bot turn. Answers go through glamour when
// markdown is set.
func writeReply(w io.Writer, label string, reply chat.Reply, markdown bool) {
	text := reply.Text
	if markdown && reply.Kind == chat.KindAnswer {
		text = renderMarkdown(text)
	} else {
		text = replyStyle(reply.Kind).Render(text)
	}
	fmt.Fprintf(w, "\n%s %s\n\n", BotStyle.Render(label+":"), text)
}
