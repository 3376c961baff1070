// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by raspdbot packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writing (session files, config)
//   - TruncateRunes: UTF-8 safe truncation for previews
//   - StringWidth / WrapWidth: terminal display width via go-runewidth
//   - ExpandHome: resolves a leading "~/" in user supplied paths
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	preview := util.TruncateRunes(firstQuestion, 40)
package util
