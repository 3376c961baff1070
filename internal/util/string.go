// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateRunes truncates s to at most maxRunes characters, appending
// "..." when something was cut. Counts runes, not bytes, so Vietnamese
// diacritics are never split.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// OneLine collapses newlines so a message can be shown in a listing.
func OneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}

// StringWidth returns the terminal display width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// WrapWidth hard-wraps each line of s at width display columns,
// breaking on spaces where possible. width <= 0 disables wrapping.
func WrapWidth(s string, width int) string {
	if width <= 0 {
		return s
	}

	var out strings.Builder
	for li, line := range strings.Split(s, "\n") {
		if li > 0 {
			out.WriteByte('\n')
		}
		col := 0
		for wi, word := range strings.Fields(line) {
			w := runewidth.StringWidth(word)
			if wi > 0 {
				if col+1+w > width {
					out.WriteByte('\n')
					col = 0
				} else {
					out.WriteByte(' ')
					col++
				}
			}
			// A single word wider than the line is cut into chunks.
			for w > width {
				head := runewidth.Truncate(word, width, "")
				out.WriteString(head)
				out.WriteByte('\n')
				word = word[len(head):]
				w = runewidth.StringWidth(word)
			}
			out.WriteString(word)
			col += w
		}
	}
	return out.String()
}
