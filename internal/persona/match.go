// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jeranaias/raspdbot/internal/similarity"
)

// words splits normalized text into words. Apostrophes stay inside words
// so "that's" is one token.
func words(s string) []string {
	return strings.FieldsFunc(similarity.Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r) && r != '\''
	})
}

// ContainsPhrase reports whether the words of phrase occur consecutively
// in text. Comparison is on normalized text.
func ContainsPhrase(text, phrase string) bool {
	hay := words(text)
	needle := words(phrase)
	if len(needle) == 0 || len(needle) > len(hay) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, w := range needle {
			if hay[i+j] != w {
				continue outer
			}
		}
		return true
	}
	return false
}

// MatchAny reports whether text contains any of the phrases as whole words.
func MatchAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if ContainsPhrase(text, p) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the normalized text contains any of the
// normalized keywords as a substring, so "speeds" matches "speed".
func ContainsAny(text string, keywords []string) bool {
	hay := similarity.Normalize(text)
	for _, k := range keywords {
		k = similarity.Normalize(k)
		if k != "" && strings.Contains(hay, k) {
			return true
		}
	}
	return false
}

// ReplaceWord replaces every occurrence of from in s that is not part of
// a longer word. Matching is case sensitive. Text inside backtick code
// spans and fenced blocks is left alone.
func ReplaceWord(s, from, to string) string {
	if from == "" || !strings.Contains(s, from) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		start := strings.IndexByte(s, '`')
		if start < 0 {
			b.WriteString(replaceWord(s, from, to))
			break
		}
		b.WriteString(replaceWord(s[:start], from, to))
		s = s[start:]

		fence := backtickRun(s)
		stop := strings.Index(s[len(fence):], fence)
		if stop < 0 {
			// Unterminated span: the backticks are literal text.
			b.WriteString(fence)
			s = s[len(fence):]
			continue
		}
		end := len(fence) + stop + len(fence)
		b.WriteString(s[:end])
		s = s[end:]
	}
	return b.String()
}

// backtickRun returns the run of backticks s starts with.
func backtickRun(s string) string {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return s[:n]
}

func replaceWord(s, from, to string) string {
	if !strings.Contains(s, from) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		idx := strings.Index(s[i:], from)
		if idx < 0 {
			break
		}
		start := i + idx
		end := start + len(from)
		if isBoundary(s, start, end) {
			b.WriteString(s[i:start])
			b.WriteString(to)
		} else {
			b.WriteString(s[i:end])
		}
		i = end
	}
	b.WriteString(s[i:])
	return b.String()
}

func isBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
