// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/ollama"
	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/storage"
	"github.com/jeranaias/raspdbot/internal/transcript"
)

// syncBuffer is a bytes.Buffer safe for the cancel test's goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestSession(t *testing.T, mock *chat.MockCompleter) (*ChatSession, *syncBuffer) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewStoreWithDir(filepath.Join(dir, "sessions"))
	require.NoError(t, err)

	out := &syncBuffer{}
	return &ChatSession{
		Engine:      chat.New(mock, chat.Options{Persona: persona.Default(), Model: "raspdbot-star"}),
		Out:         out,
		HistoryPath: filepath.Join(dir, "history.json"),
		Autosave:    true,
		Store:       store,
		SessionID:   "test-session",
	}, out
}

func TestChatSessionAsk(t *testing.T) {
	mock := &chat.MockCompleter{Response: "The car uses a lidar and a camera."}
	s, out := newTestSession(t, mock)

	quit := s.Handle(context.Background(), "What sensors does the car have?")

	assert.False(t, quit)
	assert.Equal(t, 1, mock.Calls())
	assert.Contains(t, out.String(), "The car uses a lidar and a camera.")
	assert.Len(t, s.Engine.History(), 2)

	doc, err := storage.LoadFile(s.HistoryPath)
	require.NoError(t, err, "autosave should write the history file")
	assert.Len(t, doc.History, 2)
}

func TestChatSessionQuitAndEmpty(t *testing.T) {
	mock := &chat.MockCompleter{Response: "unused"}
	s, out := newTestSession(t, mock)

	assert.False(t, s.Handle(context.Background(), "   "))
	assert.Empty(t, out.String())

	for _, in := range []string{"exit", "QUIT", "q", "/quit", "/q", "/exit"} {
		assert.True(t, s.Handle(context.Background(), in), in)
	}
	assert.Zero(t, mock.Calls())
}

func TestChatSessionGreetingSkipsModel(t *testing.T) {
	mock := &chat.MockCompleter{Response: "unused"}
	s, out := newTestSession(t, mock)

	s.Handle(context.Background(), "hello")

	assert.Zero(t, mock.Calls())
	firstLine, _, _ := strings.Cut(persona.Default().GreetingReply, "\n")
	assert.Contains(t, out.String(), firstLine)
	assert.Empty(t, s.Engine.History())
}

func TestChatSessionCompletionError(t *testing.T) {
	mock := &chat.MockCompleter{Err: ollama.ErrNotRunning}
	s, out := newTestSession(t, mock)

	s.Handle(context.Background(), "How fast can it go?")

	assert.Contains(t, out.String(), "[Error]")
	assert.Contains(t, out.String(), "Ollama is not running")
	history := s.Engine.History()
	require.Len(t, history, 1)
	assert.Equal(t, storage.RoleUser, history[0].Role)
}

func TestChatSessionNewChat(t *testing.T) {
	mock := &chat.MockCompleter{Response: "Answer."}
	s, out := newTestSession(t, mock)
	s.Handle(context.Background(), "Question?")
	require.NotEmpty(t, s.Engine.History())

	s.Handle(context.Background(), "/new")

	assert.Empty(t, s.Engine.History())
	assert.NotEqual(t, "test-session", s.SessionID)
	assert.Contains(t, out.String(), persona.Default().NewChat)
}

func TestChatSessionSaveLoadFile(t *testing.T) {
	mock := &chat.MockCompleter{Response: "Answer."}
	s, out := newTestSession(t, mock)
	s.Handle(context.Background(), "Question?")

	path := filepath.Join(t.TempDir(), "saved.json")
	s.Handle(context.Background(), "/save "+path)
	assert.Contains(t, out.String(), "Saved to "+path)

	s.Handle(context.Background(), "/new")
	require.Empty(t, s.Engine.History())

	s.Handle(context.Background(), "/load "+path)
	assert.Contains(t, out.String(), "Loaded 2 messages")
	assert.Len(t, s.Engine.History(), 2)
}

func TestChatSessionSaveLoadNamed(t *testing.T) {
	mock := &chat.MockCompleter{Response: "Answer."}
	s, out := newTestSession(t, mock)
	s.Handle(context.Background(), "Question?")

	s.Handle(context.Background(), "/save demo")
	assert.Contains(t, out.String(), "Saved session demo")

	metas, err := s.Store.List()
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "demo", metas[0].Name)

	s.Handle(context.Background(), "/sessions")
	assert.Contains(t, out.String(), "demo")

	s.Handle(context.Background(), "/new")
	s.Handle(context.Background(), "/load demo")
	assert.Len(t, s.Engine.History(), 2)
}

func TestChatSessionLoadMissingKeepsHistory(t *testing.T) {
	mock := &chat.MockCompleter{Response: "Answer."}
	s, out := newTestSession(t, mock)
	s.Handle(context.Background(), "Question?")

	s.Handle(context.Background(), "/load "+filepath.Join(t.TempDir(), "missing.json"))

	assert.Contains(t, out.String(), "[Error]")
	assert.Len(t, s.Engine.History(), 2)
}

func TestChatSessionExport(t *testing.T) {
	mock := &chat.MockCompleter{Response: "Answer."}
	s, _ := newTestSession(t, mock)
	s.Handle(context.Background(), "Question?")

	path := filepath.Join(t.TempDir(), "chat.md")
	s.Handle(context.Background(), "/export "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Question?")
	assert.Contains(t, string(data), "Answer.")
}

func TestChatSessionUnknownCommand(t *testing.T) {
	s, out := newTestSession(t, &chat.MockCompleter{})

	assert.False(t, s.Handle(context.Background(), "/frobnicate"))
	assert.Contains(t, out.String(), "unknown command: /frobnicate")
}

func TestChatSessionHistoryAndHelp(t *testing.T) {
	mock := &chat.MockCompleter{Response: "Answer."}
	s, out := newTestSession(t, mock)

	s.Handle(context.Background(), "/history")
	assert.Contains(t, out.String(), "No messages yet.")

	s.Handle(context.Background(), "Question?")
	s.Handle(context.Background(), "/history")
	assert.Contains(t, out.String(), persona.Default().UserLabel+":")

	s.Handle(context.Background(), "/help")
	assert.Contains(t, out.String(), "/sessions")
}

func TestChatSessionTranscript(t *testing.T) {
	log, err := transcript.Open(filepath.Join(t.TempDir(), "transcript.db"))
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	mock := &chat.MockCompleter{Response: "Answer."}
	s, _ := newTestSession(t, mock)
	s.Transcript = log

	s.Handle(context.Background(), "Question?")

	entries, err := log.Recent(context.Background(), "test-session", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Question?", entries[0].Content)
	assert.Equal(t, "answer", entries[1].Kind)
}

func TestChatSessionCancel(t *testing.T) {
	mock := &chat.MockCompleter{Response: "never", Gate: make(chan struct{})}
	s, out := newTestSession(t, mock)
	assert.False(t, s.CancelCurrent(), "nothing to cancel while idle")

	done := make(chan struct{})
	go func() {
		s.Handle(context.Background(), "Question?")
		close(done)
	}()

	require.Eventually(t, s.CancelCurrent, time.Second, 5*time.Millisecond)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Handle did not return after cancel")
	}
	assert.NotContains(t, out.String(), "[Error]")
}

func TestRunAskJSON(t *testing.T) {
	mock := &chat.MockCompleter{Response: "About two hours."}
	engine := chat.New(mock, chat.Options{Persona: persona.Default(), Model: "raspdbot-star"})

	var buf bytes.Buffer
	err := runAsk(context.Background(), engine, "How long does a charge last?", Args{JSON: true}, &buf, false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"answer": "About two hours."`)
	assert.Contains(t, buf.String(), `"kind": "answer"`)
	assert.Contains(t, buf.String(), `"model": "raspdbot-star"`)
}

func TestRunAskError(t *testing.T) {
	mock := &chat.MockCompleter{Err: errors.New("model crashed")}
	engine := chat.New(mock, chat.Options{Persona: persona.Default()})

	var buf bytes.Buffer
	err := runAsk(context.Background(), engine, "Question?", Args{Quiet: true}, &buf, false)
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestRunAskQuiet(t *testing.T) {
	mock := &chat.MockCompleter{Response: "Yes."}
	engine := chat.New(mock, chat.Options{Persona: persona.Default()})

	var buf bytes.Buffer
	require.NoError(t, runAsk(context.Background(), engine, "Does it have wheels?", Args{Quiet: true}, &buf, false))
	assert.Equal(t, "Yes.\n", buf.String())
}

func TestReadQuestion(t *testing.T) {
	q, err := readQuestion(strings.NewReader("  What is the top speed?\n"))
	require.NoError(t, err)
	assert.Equal(t, "What is the top speed?", q)
}
