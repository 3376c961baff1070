// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/raspdbot/internal/clarify"
	"github.com/jeranaias/raspdbot/internal/corpus"
	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/storage"
)

var sensorCorpus = corpus.NewSource(&corpus.Corpus{Pairs: []corpus.Pair{
	{Question: "what sensors does it have", Answer: "ultrasonic and camera"},
}})

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPlain(m *MockCompleter) *Engine {
	return New(m, Options{Model: "raspdbot-car", Logger: quietLogger()})
}

func newRetrieval(m *MockCompleter) *Engine {
	return New(m, Options{Model: "raspdbot-star", Source: sensorCorpus, Logger: quietLogger()})
}

// =============================================================================
// PLAIN VARIANT
// =============================================================================

func TestAskEmptyInput(t *testing.T) {
	m := &MockCompleter{Response: "x"}
	e := newPlain(m)

	reply, err := e.Ask(context.Background(), "   \t ")
	require.NoError(t, err)
	assert.Equal(t, KindPrompt, reply.Kind)
	assert.Equal(t, persona.Default().EmptyPrompt, reply.Text)
	assert.Empty(t, e.History())
	assert.Equal(t, 0, m.Calls())
}

func TestAskGreetingShortCircuits(t *testing.T) {
	m := &MockCompleter{Response: "x"}
	for _, e := range []*Engine{newPlain(m), newRetrieval(m)} {
		reply, err := e.Ask(context.Background(), "Hello!")
		require.NoError(t, err)
		assert.Equal(t, KindGreeting, reply.Kind)
		assert.Equal(t, persona.Default().GreetingReply, reply.Text)
		assert.Empty(t, e.History())
	}
	assert.Equal(t, 0, m.Calls())
}

func TestAskTelemetryShortCircuits(t *testing.T) {
	m := &MockCompleter{Response: "x"}
	e := newPlain(m)

	reply, err := e.Ask(context.Background(), "what is the current speed")
	require.NoError(t, err)
	assert.Equal(t, KindTelemetry, reply.Kind)
	assert.Empty(t, e.History())
	assert.Equal(t, 0, m.Calls())
}

func TestAskPlainGeneratesAndAppends(t *testing.T) {
	m := &MockCompleter{Response: " i think it uses a Raspberry Pi.\n### User:\nmore"}
	e := newPlain(m)

	reply, err := e.Ask(context.Background(), "  what board does it use  ")
	require.NoError(t, err)
	assert.Equal(t, KindAnswer, reply.Kind)
	assert.Equal(t, "I think it uses a Raspberry Pi.", reply.Text)

	assert.Equal(t, []storage.Message{
		{Role: storage.RoleUser, Content: "what board does it use"},
		{Role: storage.RoleAssistant, Content: "I think it uses a Raspberry Pi."},
	}, e.History())

	p := m.LastParams()
	assert.Equal(t, 256, p.MaxTokens)
	assert.Equal(t, 0.35, p.Temperature)
	assert.Equal(t, 0.9, p.TopP)
	assert.Equal(t, 50, p.TopK)
	assert.Equal(t, 1.15, p.RepeatPenalty)
	assert.Equal(t, []string{"\n### User:", "\n### System:", "\n### Assistant:"}, p.Stop)

	want := "### System:\n" + persona.Default().PlainSystem + "\n\n" +
		"### User:\nwhat board does it use\n\n" +
		"### Assistant:\n"
	assert.Equal(t, want, m.LastPrompt())
}

func TestAskPromptIncludesHistory(t *testing.T) {
	m := &MockCompleter{Response: "answer"}
	e := newPlain(m)

	_, err := e.Ask(context.Background(), "first question")
	require.NoError(t, err)
	_, err = e.Ask(context.Background(), "second question")
	require.NoError(t, err)

	assert.Contains(t, m.LastPrompt(), "### User:\nfirst question\n\n### Assistant:\nanswer\n\n### User:\nsecond question\n\n### Assistant:\n")
	assert.Len(t, e.History(), 4)
}

func TestAskEmptyCompletionFallback(t *testing.T) {
	m := &MockCompleter{Response: "\n### Assistant: nothing"}
	e := newPlain(m)

	reply, err := e.Ask(context.Background(), "explain the chassis")
	require.NoError(t, err)
	assert.Equal(t, persona.Default().Fallback, reply.Text)
	assert.Equal(t, persona.Default().Fallback, e.History()[1].Content)
}

func TestAskCompletionFailure(t *testing.T) {
	boom := errors.New("connection refused")
	m := &MockCompleter{Err: boom}
	e := newPlain(m)

	reply, err := e.Ask(context.Background(), "explain the chassis")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, KindError, reply.Kind)
	assert.Contains(t, reply.Text, "connection refused")

	// The user message stays, no assistant message is added.
	assert.Equal(t, []storage.Message{{Role: storage.RoleUser, Content: "explain the chassis"}}, e.History())
}

func TestVietnamesePersonaPronouns(t *testing.T) {
	vi, err := persona.Get("vi")
	require.NoError(t, err)

	m := &MockCompleter{Response: "Mình nghĩ xe dùng Raspberry Pi."}
	e := New(m, Options{Persona: vi, Logger: quietLogger()})

	reply, err := e.Ask(context.Background(), "xe dùng bo mạch gì")
	require.NoError(t, err)
	assert.Equal(t, "Tôi nghĩ xe dùng Raspberry Pi.", reply.Text)
}

// =============================================================================
// RETRIEVAL VARIANT
// =============================================================================

func TestRetrievalAnswersInScopeQuestion(t *testing.T) {
	m := &MockCompleter{Response: "It has ultrasonic sensors and a camera."}
	e := newRetrieval(m)

	reply, err := e.Ask(context.Background(), "which sensors does it have")
	require.NoError(t, err)
	assert.Equal(t, KindAnswer, reply.Kind)
	assert.InDelta(t, 0.902, reply.Score, 0.001)
	assert.Equal(t, clarify.Resolved, e.ClarifyState())

	prompt := m.LastPrompt()
	assert.Contains(t, prompt, "### REFERENCE DATA (from the corpus):\n[Sample 1 | score=0.90]\nQ: what sensors does it have\nA: ultrasonic and camera\n\n### User:\nwhich sensors does it have\n\n### Assistant:\n")
	assert.Equal(t, 0.3, m.LastParams().Temperature)
	assert.Contains(t, m.LastParams().Stop, "\n### REFERENCE DATA (from the corpus)")
}

func TestRetrievalClarifyTwiceThenRefuse(t *testing.T) {
	m := &MockCompleter{Response: "x"}
	e := newRetrieval(m)
	ctx := context.Background()

	reply, err := e.Ask(ctx, "what is the weather")
	require.NoError(t, err)
	assert.Equal(t, KindClarify, reply.Kind)
	assert.Equal(t, clarify.AwaitingConfirm1, e.ClarifyState())

	reply, err = e.Ask(ctx, "what is the weather")
	require.NoError(t, err)
	assert.Equal(t, KindClarify, reply.Kind)
	assert.Equal(t, clarify.AwaitingConfirm2, e.ClarifyState())

	reply, err = e.Ask(ctx, "what is the weather")
	require.NoError(t, err)
	assert.Equal(t, KindRefusal, reply.Kind)
	assert.Equal(t, "I have no information on this.", reply.Text)
	assert.Equal(t, clarify.Resolved, e.ClarifyState())

	assert.Equal(t, 0, m.Calls())
	assert.Empty(t, e.History())
}

func TestRetrievalConfirmationRecoversQuestion(t *testing.T) {
	m := &MockCompleter{Response: "Top speed is about 2 m/s."}
	e := newRetrieval(m)
	ctx := context.Background()

	reply, err := e.Ask(ctx, "how fast can it go")
	require.NoError(t, err)
	require.Equal(t, KindClarify, reply.Kind)

	reply, err = e.Ask(ctx, "yes")
	require.NoError(t, err)
	assert.Equal(t, KindAnswer, reply.Kind)
	assert.Equal(t, clarify.Resolved, e.ClarifyState())

	assert.Contains(t, m.LastPrompt(), "### User:\nhow fast can it go\n\n### Assistant:\n")
	assert.Equal(t, storage.Message{Role: storage.RoleUser, Content: "how fast can it go"}, e.History()[0])
}

func TestRetrievalConfirmationIgnoredWhenResolved(t *testing.T) {
	m := &MockCompleter{Response: "x"}
	e := newRetrieval(m)

	// "yes" alone scores low and starts a clarification of its own.
	reply, err := e.Ask(context.Background(), "yes")
	require.NoError(t, err)
	assert.Equal(t, KindClarify, reply.Kind)
}

func TestRetrievalFallback(t *testing.T) {
	m := &MockCompleter{Response: "   "}
	e := newRetrieval(m)

	reply, err := e.Ask(context.Background(), "what sensors does it have")
	require.NoError(t, err)
	assert.Equal(t, persona.Default().RetrievalFallback, reply.Text)
}

// =============================================================================
// STATE
// =============================================================================

func TestResetClearsHistoryAndClarify(t *testing.T) {
	m := &MockCompleter{Response: "x"}
	e := newRetrieval(m)
	ctx := context.Background()

	_, err := e.Ask(ctx, "what sensors does it have")
	require.NoError(t, err)
	_, err = e.Ask(ctx, "what is the weather")
	require.NoError(t, err)
	require.Equal(t, clarify.AwaitingConfirm1, e.ClarifyState())

	e.Reset()
	assert.Empty(t, e.History())
	assert.Equal(t, clarify.Resolved, e.ClarifyState())
}

func TestDocumentRestore(t *testing.T) {
	m := &MockCompleter{Response: "answer"}
	e := newPlain(m)
	_, err := e.Ask(context.Background(), "explain the chassis")
	require.NoError(t, err)

	doc := e.Document()
	assert.Equal(t, "raspdbot-car", doc.ModelPath)
	assert.Len(t, doc.History, 2)

	other := newPlain(&MockCompleter{})
	other.Restore(storage.Document{ModelPath: "ignored", History: []storage.Message{{Role: "user", Content: "old"}}})
	assert.Equal(t, []storage.Message{{Role: "user", Content: "old"}}, other.History())
	assert.Equal(t, "raspdbot-car", other.Model())

	// Restore replaces wholesale.
	other.Restore(doc)
	assert.Equal(t, doc.History, other.History())
}

func TestHistoryIsACopy(t *testing.T) {
	e := newPlain(&MockCompleter{Response: "a"})
	_, err := e.Ask(context.Background(), "explain the chassis")
	require.NoError(t, err)

	h := e.History()
	h[0].Content = "mutated"
	assert.Equal(t, "explain the chassis", e.History()[0].Content)
}
