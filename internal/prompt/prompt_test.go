// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPlain(t *testing.T) {
	tmpl := Template{}
	got := tmpl.Render(Input{
		System: "  Be brief. ",
		History: []Turn{
			{Role: "user", Content: "what sensors does it have"},
			{Role: "assistant", Content: "ultrasonic and camera"},
			{Role: "user", Content: "how fast can it go"},
		},
	})

	want := "### System:\nBe brief.\n\n" +
		"### User:\nwhat sensors does it have\n\n" +
		"### Assistant:\nultrasonic and camera\n\n" +
		"### User:\nhow fast can it go\n\n" +
		"### Assistant:\n"
	assert.Equal(t, want, got)
}

func TestRenderWithReferences(t *testing.T) {
	tmpl := New("REFERENCE DATA")
	got := tmpl.Render(Input{
		System:     "sys",
		References: "[Sample 1 | score=0.90]\nQ: q\nA: a",
		History:    []Turn{{Role: "user", Content: "q?"}},
	})

	want := "### System:\nsys\n\n" +
		"### REFERENCE DATA:\n[Sample 1 | score=0.90]\nQ: q\nA: a\n\n" +
		"### User:\nq?\n\n" +
		"### Assistant:\n"
	assert.Equal(t, want, got)

	// No references, no section.
	got = tmpl.Render(Input{System: "sys", History: []Turn{{Role: "user", Content: "q?"}}})
	assert.NotContains(t, got, "REFERENCE DATA")
}

func TestRenderEndsWithOpenAssistant(t *testing.T) {
	got := Template{}.Render(Input{System: "s"})
	assert.True(t, strings.HasSuffix(got, "### Assistant:\n"))
}

func TestStopSequences(t *testing.T) {
	assert.Equal(t, []string{"\n### User:", "\n### System:", "\n### Assistant:"}, Template{}.StopSequences())

	stops := New("DỮ LIỆU THAM CHIẾU").StopSequences()
	assert.Len(t, stops, 4)
	assert.Equal(t, "\n### DỮ LIỆU THAM CHIẾU", stops[3])
}

func TestClean(t *testing.T) {
	tmpl := New("REFERENCE DATA")
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "  It has a camera.  ", "It has a camera."},
		{"leaked user turn", "It has a camera.\n### User:\nand more?", "It has a camera."},
		{"bare marker", "Answer.\n### Something else", "Answer."},
		{"inline assistant header", "Answer. ### Assistant: again", "Answer."},
		{"earliest marker wins", "A ### System: x\n### User: y", "A"},
		{"references leak", "Answer ### REFERENCE DATA: ...", "Answer"},
		{"only marker", "### User:\nhi", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tmpl.Clean(tt.raw))
		})
	}
}

func TestRenderCleanRoundTrip(t *testing.T) {
	tmpl := Template{}
	reply := "The car uses an ultrasonic sensor and a camera."
	// A completion that continues into the next turn is cut back to the reply.
	raw := reply + "\n" + tmpl.Render(Input{System: "s", History: []Turn{{Role: "user", Content: "x"}}})
	assert.Equal(t, reply, tmpl.Clean(raw))
}
