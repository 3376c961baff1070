// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package similarity scores how alike two short texts are.
//
// The score is the matching-block ratio 2*M/T: the texts are normalized,
// the longest common run of characters is found, the search recurses on
// the pieces left and right of it, and M is the total length of all runs
// found. T is the combined length. Identical texts score 1.0, texts with
// nothing in common score 0.0.
//
// Scores are not symmetric in general. Callers that rank candidates must
// always pass the user's text as the first argument.
package similarity
