// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultName is the persona used when none is configured.
const DefaultName = "en"

// Substitution replaces a whole word in generated text.
type Substitution struct {
	From string
	To   string
}

// Persona is the complete set of user facing text for one language.
type Persona struct {
	Name string

	// Lexicons
	Greetings         []string
	Confirmations     []string
	TelemetryKeywords []string

	// Canned replies
	GreetingReply     string
	TelemetryReply    string
	ClarifyQuestion   string
	Refusal           string
	EmptyPrompt       string
	Fallback          string
	RetrievalFallback string
	NewChat           string

	// Generation
	PlainSystem     string
	RetrievalSystem string
	Pronouns        []Substitution

	// Reference block
	ReferencesHeader string
	SampleLabel      string
	QuestionLabel    string
	AnswerLabel      string

	// Export
	UserLabel string
	BotLabel  string
}

var builtins = map[string]Persona{
	"en": english,
	"vi": vietnamese,
}

// Get returns the built-in persona with the given name.
func Get(name string) (Persona, error) {
	p, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Default returns the default persona.
func Default() Persona {
	return builtins[DefaultName]
}

// Names lists the built-in personas in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsGreeting reports whether text contains a greeting phrase. Greetings
// match on whole words since "hi" is a substring of "which".
func (p Persona) IsGreeting(text string) bool {
	return MatchAny(text, p.Greetings)
}

// IsConfirmation reports whether text confirms a pending question.
func (p Persona) IsConfirmation(text string) bool {
	return ContainsAny(text, p.Confirmations)
}

// NeedsTelemetry reports whether text asks for live vehicle data.
func (p Persona) NeedsTelemetry(text string) bool {
	return ContainsAny(text, p.TelemetryKeywords)
}

// FixPronouns applies the persona's pronoun substitutions to text.
func (p Persona) FixPronouns(text string) string {
	for _, s := range p.Pronouns {
		text = ReplaceWord(text, s.From, s.To)
	}
	return text
}
