// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/raspdbot/internal/corpus"
)

var testPairs = []corpus.Pair{
	{Question: "what sensors does it have", Answer: "ultrasonic and camera"},
	{Question: "how fast can it go", Answer: "about 2 m/s"},
	{Question: "", Answer: "orphan answer"},
	{Question: "what battery does it use", Answer: ""},
	{Question: "what board runs it", Answer: "Raspberry Pi 4"},
}

func TestTopK(t *testing.T) {
	results := TopK("which sensors does it have", testPairs, 5)

	// Two pairs are incomplete and never scored.
	require.Len(t, results, 3)
	assert.Equal(t, "what sensors does it have", results[0].Question)
	assert.InDelta(t, 0.9019607843137255, results[0].Score, 1e-12)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestTopKLimit(t *testing.T) {
	assert.Len(t, TopK("what", testPairs, 1), 1)
	assert.Empty(t, TopK("what", testPairs, 0))
	assert.Empty(t, TopK("what", nil, 5))
}

func TestTopKStableTies(t *testing.T) {
	pairs := []corpus.Pair{
		{Question: "same question", Answer: "first"},
		{Question: "other", Answer: "x"},
		{Question: "same question", Answer: "second"},
		{Question: "same question", Answer: "third"},
	}
	results := TopK("same question", pairs, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Answer)
	assert.Equal(t, "second", results[1].Answer)
	assert.Equal(t, "third", results[2].Answer)
}

func TestBest(t *testing.T) {
	assert.Equal(t, 0.0, Best(nil))
	assert.Equal(t, 0.7, Best([]Scored{{Score: 0.7}, {Score: 0.2}}))
}

func TestFormatReferences(t *testing.T) {
	results := []Scored{
		{Pair: corpus.Pair{Question: "what sensors does it have", Answer: "ultrasonic and camera"}, Score: 0.8333},
		{Pair: corpus.Pair{Question: "how fast", Answer: "2 m/s"}, Score: 0.5},
	}

	got := FormatReferences(results, Labels{})
	want := "[Sample 1 | score=0.83]\nQ: what sensors does it have\nA: ultrasonic and camera\n\n" +
		"[Sample 2 | score=0.50]\nQ: how fast\nA: 2 m/s"
	assert.Equal(t, want, got)

	vi := FormatReferences(results[:1], Labels{Sample: "Mẫu", Question: "Hỏi", Answer: "Đáp"})
	assert.Equal(t, "[Mẫu 1 | score=0.83]\nHỏi: what sensors does it have\nĐáp: ultrasonic and camera", vi)

	assert.Equal(t, "", FormatReferences(nil, DefaultLabels))
}
