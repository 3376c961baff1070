// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt renders conversations into the sectioned text format the
// model was tuned on, and cleans up completions that run past their turn.
//
// Every section starts with a header line "### <Name>:" followed by its
// body and a blank line:
//
//	### System:
//	<instructions>
//
//	### <references name>:
//	<reference block>
//
//	### User:
//	<question>
//
//	### Assistant:
//
// The prompt always ends with an open Assistant header.
package prompt

import (
	"strings"
)

const markerPrefix = "### "

// Section names.
const (
	SectionSystem    = "System"
	SectionUser      = "User"
	SectionAssistant = "Assistant"
)

// Turn is one message of the conversation.
type Turn struct {
	Role    string
	Content string
}

// Input is everything needed to render a prompt.
type Input struct {
	System     string
	References string
	History    []Turn
}

// Template renders prompts. The zero value has no references section.
type Template struct {
	// ReferencesName is the header of the reference block section.
	ReferencesName string
}

// New returns a template whose reference section is titled refs.
func New(refs string) Template {
	return Template{ReferencesName: refs}
}

// Header returns the header line of a section, without newline.
func Header(name string) string {
	return markerPrefix + name + ":"
}

// Render builds the prompt. Turns with role "user" become User sections,
// every other role becomes an Assistant section. Empty references are
// omitted.
func (t Template) Render(in Input) string {
	var b strings.Builder

	writeSection(&b, SectionSystem, in.System)
	if refs := strings.TrimSpace(in.References); refs != "" && t.ReferencesName != "" {
		writeSection(&b, t.ReferencesName, refs)
	}
	for _, turn := range in.History {
		name := SectionAssistant
		if turn.Role == "user" {
			name = SectionUser
		}
		writeSection(&b, name, turn.Content)
	}

	b.WriteString(Header(SectionAssistant))
	b.WriteByte('\n')
	return b.String()
}

func writeSection(b *strings.Builder, name, body string) {
	b.WriteString(Header(name))
	b.WriteByte('\n')
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n\n")
}

// StopSequences returns the strings that end generation: the start of any
// section the model should not write.
func (t Template) StopSequences() []string {
	stops := []string{
		"\n" + Header(SectionUser),
		"\n" + Header(SectionSystem),
		"\n" + Header(SectionAssistant),
	}
	if t.ReferencesName != "" {
		stops = append(stops, "\n"+markerPrefix+t.ReferencesName)
	}
	return stops
}

// Clean truncates raw at the first leaked section marker and trims
// surrounding whitespace.
func (t Template) Clean(raw string) string {
	cuts := []string{
		"\n" + markerPrefix,
		Header(SectionAssistant),
		Header(SectionUser),
		Header(SectionSystem),
	}
	if t.ReferencesName != "" {
		cuts = append(cuts, markerPrefix+t.ReferencesName)
	}

	end := len(raw)
	for _, c := range cuts {
		if idx := strings.Index(raw, c); idx >= 0 && idx < end {
			end = idx
		}
	}
	return strings.TrimSpace(raw[:end])
}
