// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package similarity

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Block is a run of Size equal characters starting at A in the first text
// and at B in the second. Offsets count runes.
type Block struct {
	A, B, Size int
}

// Normalize canonicalizes text before comparison: NFC composition, lower
// case, trimmed, inner whitespace runs collapsed to a single space.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// Ratio returns the similarity of a and b in [0, 1] after normalization.
// Two empty texts are considered identical.
func Ratio(a, b string) float64 {
	ra := []rune(Normalize(a))
	rb := []rune(Normalize(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	m := newMatcher(ra, rb)
	matched := 0
	for _, blk := range m.matchingBlocks() {
		matched += blk.Size
	}
	return 2.0 * float64(matched) / float64(total)
}

// MatchingBlocks returns the non-overlapping common runs of the normalized
// texts in increasing order of position.
func MatchingBlocks(a, b string) []Block {
	m := newMatcher([]rune(Normalize(a)), []rune(Normalize(b)))
	return m.matchingBlocks()
}

// =============================================================================
// MATCHER
// =============================================================================

type matcher struct {
	a, b []rune
	// b2j maps each rune of b to its ascending positions in b.
	b2j map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

// longestMatch finds the longest common run within a[alo:ahi] and
// b[blo:bhi]. Among equally long runs the one starting earliest in a wins,
// then the one starting earliest in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) Block {
	best := Block{A: alo, B: blo}
	// j2len[j] is the length of the run ending at a[i-1], b[j].
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.Size {
				best = Block{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		j2len = next
	}
	return best
}

func (m *matcher) matchingBlocks() []Block {
	type span struct{ alo, ahi, blo, bhi int }

	queue := []span{{0, len(m.a), 0, len(m.b)}}
	var blocks []Block
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		blk := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if blk.Size == 0 {
			continue
		}
		blocks = append(blocks, blk)
		if s.alo < blk.A && s.blo < blk.B {
			queue = append(queue, span{s.alo, blk.A, s.blo, blk.B})
		}
		if blk.A+blk.Size < s.ahi && blk.B+blk.Size < s.bhi {
			queue = append(queue, span{blk.A + blk.Size, s.ahi, blk.B + blk.Size, s.bhi})
		}
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].A != blocks[j].A {
			return blocks[i].A < blocks[j].A
		}
		return blocks[i].B < blocks[j].B
	})

	// Merge runs that touch in both texts.
	merged := blocks[:0:0]
	for _, blk := range blocks {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.A+last.Size == blk.A && last.B+last.Size == blk.B {
				last.Size += blk.Size
				continue
			}
		}
		merged = append(merged, blk)
	}
	return merged
}
