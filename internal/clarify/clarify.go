// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clarify decides whether a retrieved question is answered, sent
// back to the user for confirmation, or refused.
//
// A Session moves through three states:
//
//	Resolved          no question pending
//	AwaitingConfirm1  asked once whether the question is in scope
//	AwaitingConfirm2  asked twice; the next unrelated question is refused
//
// A confirmation while a question is pending recovers that question and
// returns the session to Resolved.
package clarify

import (
	"fmt"
	"sync"
)

// Defaults preserved from the original bot.
const (
	DefaultThreshold   = 0.60
	DefaultMaxAttempts = 2
)

// State is the position of a Session in the clarification flow.
type State int

const (
	Resolved State = iota
	AwaitingConfirm1
	AwaitingConfirm2
)

func (s State) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case AwaitingConfirm1:
		return "awaiting_confirm_1"
	case AwaitingConfirm2:
		return "awaiting_confirm_2"
	default:
		return fmt.Sprintf("awaiting_confirm_%d", int(s))
	}
}

// Decision is the outcome of Decide.
type Decision int

const (
	Answer Decision = iota
	Clarify
	Refuse
)

func (d Decision) String() string {
	switch d {
	case Answer:
		return "answer"
	case Clarify:
		return "clarify"
	case Refuse:
		return "refuse"
	default:
		return "unknown"
	}
}

// Policy configures a Session.
type Policy struct {
	// Threshold is the lowest retrieval score treated as in scope.
	Threshold float64
	// MaxAttempts is how many clarifying questions are asked before refusing.
	MaxAttempts int
	// IsConfirmation reports whether an input confirms the pending question.
	IsConfirmation func(string) bool
}

// DefaultPolicy returns the policy with default threshold and limit.
// IsConfirmation must still be set by the caller.
func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold, MaxAttempts: DefaultMaxAttempts}
}

// Session is the per-conversation clarification state. It is safe for
// concurrent use.
type Session struct {
	policy Policy

	mu       sync.Mutex
	attempts int
	pending  string
}

// NewSession creates a session in the Resolved state. A zero threshold or
// a negative limit falls back to the defaults.
func NewSession(p Policy) *Session {
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}
	if p.MaxAttempts < 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	return &Session{policy: p}
}

// Policy returns the session's policy.
func (s *Session) Policy() Policy {
	return s.policy
}

// Recover returns the pending question when input confirms it. The
// session is reset on success.
func (s *Session) Recover(input string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempts == 0 || s.policy.IsConfirmation == nil || !s.policy.IsConfirmation(input) {
		return "", false
	}
	question := s.pending
	s.attempts = 0
	s.pending = ""
	return question, true
}

// Decide applies the policy to a question whose best retrieval score is
// best.
func (s *Session) Decide(question string, best float64) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	if best >= s.policy.Threshold {
		s.attempts = 0
		s.pending = ""
		return Answer
	}
	if s.attempts < s.policy.MaxAttempts {
		s.attempts++
		s.pending = question
		return Clarify
	}
	s.attempts = 0
	s.pending = ""
	return Refuse
}

// Reset returns the session to Resolved.
func (s *Session) Reset() {
	s.mu.Lock()
	s.attempts = 0
	s.pending = ""
	s.mu.Unlock()
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State(s.attempts)
}

// Pending returns the question awaiting confirmation, if any.
func (s *Session) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
