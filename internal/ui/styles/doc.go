// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the raspdbot
// terminal front ends.
//
// # Key Types
//
//   - Theme: lipgloss styles for the chat window
//   - SpinnerConfig: frame set for the busy indicator
//
// All colors are lipgloss.AdaptiveColor values so light and dark terminals
// both stay readable. The ASCII status indicators carry meaning without
// relying on color.
package styles
