// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"
)

func TestSpinnerConfigDuration(t *testing.T) {
	if got := LineSpinner.Duration(); got != 100*time.Millisecond {
		t.Errorf("LineSpinner.Duration() = %v, want 100ms", got)
	}
	if got := (SpinnerConfig{}).Duration(); got != time.Second {
		t.Errorf("zero FPS Duration() = %v, want 1s", got)
	}
}

func TestSpinnerConversion(t *testing.T) {
	s := DotsSpinner.Spinner()
	if len(s.Frames) != len(DotsSpinner.Frames) {
		t.Errorf("frames = %d, want %d", len(s.Frames), len(DotsSpinner.Frames))
	}
	if s.FPS != DotsSpinner.Duration() {
		t.Errorf("FPS = %v, want %v", s.FPS, DotsSpinner.Duration())
	}
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{RenderSuccess("saved"), "[OK] saved"},
		{RenderError("failed"), "[X] failed"},
		{RenderWarning("careful"), "[!] careful"},
		{RenderInfo("note"), "[i] note"},
		{RenderStatus(false, "nope"), "[X] nope"},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.got, tt.want) {
			t.Errorf("%q does not contain %q", tt.got, tt.want)
		}
	}
}

func TestLayoutMode(t *testing.T) {
	th := &Theme{}
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{80, LayoutMedium},
		{120, LayoutWide},
	}
	for _, tt := range tests {
		th.SetSize(tt.width, 24)
		if got := th.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: got %v, want %v", tt.width, got, tt.want)
		}
	}
}
