// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package corpus

import "sync"

// Source holds the current corpus snapshot. It is safe for concurrent use;
// readers always see a complete snapshot.
type Source struct {
	mu      sync.RWMutex
	current *Corpus
}

// NewSource returns a Source serving c.
func NewSource(c *Corpus) *Source {
	return &Source{current: c}
}

// Pairs returns the pairs of the current snapshot. The slice must not be
// modified.
func (s *Source) Pairs() []Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	return s.current.Pairs
}

// Corpus returns the current snapshot.
func (s *Source) Corpus() *Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Swap replaces the current snapshot.
func (s *Source) Swap(c *Corpus) {
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
}
