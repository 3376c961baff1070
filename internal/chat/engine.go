// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/raspdbot/internal/clarify"
	"github.com/jeranaias/raspdbot/internal/corpus"
	"github.com/jeranaias/raspdbot/internal/ollama"
	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/prompt"
	"github.com/jeranaias/raspdbot/internal/retrieval"
	"github.com/jeranaias/raspdbot/internal/storage"
)

// =============================================================================
// TYPES
// =============================================================================

// Completer produces raw text for a rendered prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, p ollama.Params) (string, error)
}

// PairSource provides the current corpus pairs.
type PairSource interface {
	Pairs() []corpus.Pair
}

// Kind classifies a Reply.
type Kind string

const (
	KindPrompt    Kind = "prompt"
	KindGreeting  Kind = "greeting"
	KindTelemetry Kind = "telemetry"
	KindClarify   Kind = "clarify"
	KindRefusal   Kind = "refusal"
	KindAnswer    Kind = "answer"
	KindError     Kind = "error"
)

// Reply is the engine's response to one input.
type Reply struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
	// Score is the best retrieval score, retrieval variant only.
	Score float64 `json:"score,omitempty"`
}

// Options configure an Engine. Zero values select defaults.
type Options struct {
	Persona persona.Persona
	Model   string
	Params  ollama.Params

	// Source enables the retrieval variant.
	Source PairSource
	Policy clarify.Policy
	TopK   int

	Logger *slog.Logger
}

// PlainParams returns the generation parameters of the plain variant.
func PlainParams() ollama.Params {
	return ollama.DefaultParams()
}

// RetrievalParams returns the generation parameters of the retrieval
// variant, which samples cooler to stay close to the references.
func RetrievalParams() ollama.Params {
	p := ollama.DefaultParams()
	p.Temperature = 0.3
	return p
}

func isZeroParams(p ollama.Params) bool {
	return p.MaxTokens == 0 && p.Temperature == 0 && p.TopP == 0 && p.TopK == 0 && p.RepeatPenalty == 0
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine is one conversation.
type Engine struct {
	completer Completer
	persona   persona.Persona
	params    ollama.Params
	template  prompt.Template
	source    PairSource
	clarify   *clarify.Session
	topK      int
	logger    *slog.Logger

	// askMu serializes Ask, Reset and Restore. mu guards the fields below
	// and is never held across a completion, so readers do not wait on
	// the model.
	askMu   sync.Mutex
	mu      sync.Mutex
	model   string
	history []storage.Message
}

// New creates an engine with empty history.
func New(c Completer, opts Options) *Engine {
	if opts.Persona.Name == "" {
		opts.Persona = persona.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Engine{
		completer: c,
		persona:   opts.Persona,
		params:    opts.Params,
		source:    opts.Source,
		topK:      opts.TopK,
		logger:    opts.Logger,
		model:     opts.Model,
	}

	if e.source != nil {
		e.template = prompt.New(opts.Persona.ReferencesHeader)
		policy := opts.Policy
		if policy.IsConfirmation == nil {
			policy.IsConfirmation = opts.Persona.IsConfirmation
		}
		e.clarify = clarify.NewSession(policy)
		if e.topK <= 0 {
			e.topK = retrieval.DefaultK
		}
		if isZeroParams(e.params) {
			e.params = RetrievalParams()
		}
	} else if isZeroParams(e.params) {
		e.params = PlainParams()
	}
	e.params.Stop = e.template.StopSequences()

	return e
}

// Retrieval reports whether the engine runs the retrieval variant.
func (e *Engine) Retrieval() bool {
	return e.source != nil
}

// Persona returns the engine's persona.
func (e *Engine) Persona() persona.Persona {
	return e.persona
}

// Ask handles one user input. The returned error is non-nil only when
// the completion service failed; the reply then has KindError and the
// user message stays in history.
func (e *Engine) Ask(ctx context.Context, text string) (Reply, error) {
	e.askMu.Lock()
	defer e.askMu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Text: e.persona.EmptyPrompt, Kind: KindPrompt}, nil
	}
	if e.persona.IsGreeting(text) {
		return Reply{Text: e.persona.GreetingReply, Kind: KindGreeting}, nil
	}

	if e.source == nil {
		if e.persona.NeedsTelemetry(text) {
			return Reply{Text: e.persona.TelemetryReply, Kind: KindTelemetry}, nil
		}
		return e.generate(ctx, text, "", 0, e.persona.PlainSystem, e.persona.Fallback)
	}

	question := text
	recovered := false
	if q, ok := e.clarify.Recover(text); ok {
		question, recovered = q, true
	}

	results := retrieval.TopK(question, e.source.Pairs(), e.topK)
	best := retrieval.Best(results)

	// A confirmed question is answered regardless of its score.
	if !recovered {
		switch e.clarify.Decide(question, best) {
		case clarify.Clarify:
			e.logger.Debug("CLARIFY", "score", best, "state", e.clarify.State().String())
			return Reply{Text: e.persona.ClarifyQuestion, Kind: KindClarify, Score: best}, nil
		case clarify.Refuse:
			e.logger.Debug("REFUSE", "score", best)
			return Reply{Text: e.persona.Refusal, Kind: KindRefusal, Score: best}, nil
		}
	}

	refs := retrieval.FormatReferences(results, retrieval.Labels{
		Sample:   e.persona.SampleLabel,
		Question: e.persona.QuestionLabel,
		Answer:   e.persona.AnswerLabel,
	})
	return e.generate(ctx, question, refs, best, e.persona.RetrievalSystem, e.persona.RetrievalFallback)
}

// generate appends the question, runs the model and appends the answer.
// Callers hold e.askMu.
func (e *Engine) generate(ctx context.Context, question, refs string, score float64, system, fallback string) (Reply, error) {
	e.mu.Lock()
	e.history = append(e.history, storage.Message{Role: storage.RoleUser, Content: question})
	turns := make([]prompt.Turn, len(e.history))
	for i, m := range e.history {
		turns[i] = prompt.Turn{Role: m.Role, Content: m.Content}
	}
	model := e.model
	e.mu.Unlock()

	rendered := e.template.Render(prompt.Input{
		System:     system,
		References: refs,
		History:    turns,
	})

	start := time.Now()
	raw, err := e.completer.Complete(ctx, rendered, e.params)
	if err != nil {
		e.logger.Error("COMPLETION_FAILED", "model", model, "error", err)
		return Reply{Text: err.Error(), Kind: KindError, Score: score}, fmt.Errorf("completion failed: %w", err)
	}

	answer := e.persona.FixPronouns(e.template.Clean(raw))
	if answer == "" {
		answer = fallback
	}
	e.mu.Lock()
	e.history = append(e.history, storage.Message{Role: storage.RoleAssistant, Content: answer})
	e.mu.Unlock()

	e.logger.Debug("COMPLETION", "model", model, "duration", time.Since(start), "prompt_bytes", len(rendered), "answer_bytes", len(answer))
	return Reply{Text: answer, Kind: KindAnswer, Score: score}, nil
}

// Reset clears history and any pending clarification.
func (e *Engine) Reset() {
	e.askMu.Lock()
	defer e.askMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
	if e.clarify != nil {
		e.clarify.Reset()
	}
}

// History returns a copy of the conversation.
func (e *Engine) History() []storage.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := make([]storage.Message, len(e.history))
	copy(h, e.history)
	return h
}

// Model returns the model identifier recorded with the conversation.
func (e *Engine) Model() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

// SetModel changes the model identifier recorded with the conversation.
func (e *Engine) SetModel(model string) {
	e.mu.Lock()
	e.model = model
	e.mu.Unlock()
}

// ClarifyState returns the clarification state, Resolved for the plain
// variant.
func (e *Engine) ClarifyState() clarify.State {
	if e.clarify == nil {
		return clarify.Resolved
	}
	return e.clarify.State()
}

// Document returns the conversation in its persisted form.
func (e *Engine) Document() storage.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return storage.Serialize(e.model, e.history)
}

// Restore replaces the history with the one in doc. The model identifier
// is left unchanged; the engine keeps generating with its own model.
func (e *Engine) Restore(doc storage.Document) {
	e.askMu.Lock()
	defer e.askMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = make([]storage.Message, len(doc.History))
	copy(e.history, doc.History)
	if e.clarify != nil {
		e.clarify.Reset()
	}
}
