// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package retrieval ranks corpus pairs by how closely their question
// matches the user's question.
package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/raspdbot/internal/corpus"
	"github.com/jeranaias/raspdbot/internal/similarity"
)

// DefaultK is the number of pairs retrieved per question.
const DefaultK = 5

// Scored is a corpus pair with its similarity to the question.
type Scored struct {
	corpus.Pair
	Score float64 `json:"score"`
}

// Labels name the parts of a rendered reference block.
type Labels struct {
	Sample   string
	Question string
	Answer   string
}

// DefaultLabels renders "[Sample 1 | score=0.83]\nQ: ...\nA: ...".
var DefaultLabels = Labels{Sample: "Sample", Question: "Q", Answer: "A"}

// TopK scores question against every pair and returns the k best in
// descending score order. Pairs missing a question or an answer are
// ignored. Equal scores keep corpus order.
func TopK(question string, pairs []corpus.Pair, k int) []Scored {
	if k <= 0 || len(pairs) == 0 {
		return nil
	}

	scored := make([]Scored, 0, len(pairs))
	for _, p := range pairs {
		if p.Question == "" || p.Answer == "" {
			continue
		}
		scored = append(scored, Scored{Pair: p, Score: similarity.Ratio(question, p.Question)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Best returns the highest score in results, or 0 when empty.
func Best(results []Scored) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Score
}

// FormatReferences renders results as the reference block placed in the
// prompt. Entries are numbered from 1 and separated by a blank line.
func FormatReferences(results []Scored, labels Labels) string {
	if labels == (Labels{}) {
		labels = DefaultLabels
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("[%s %d | score=%.2f]\n%s: %s\n%s: %s",
			labels.Sample, i+1, r.Score,
			labels.Question, r.Question,
			labels.Answer, r.Answer))
	}
	return strings.Join(blocks, "\n\n")
}
