package span

import (
	"math"
	"sort"
)

// ReadingOrder computes the order in which the given text blocks should be
// visited: top to bottom, then left to right. Positions are normalized by the
// page dimensions and rounded to 3 decimal places before comparison, which
// keeps the ordering deterministic across runs regardless of float noise.
//
// The result is a permutation of block indices. This approximates natural
// reading order for single-column and simple multi-column layouts; complex
// interleaved columns may come out of order.
func ReadingOrder(boxes []BBox, pageWidth, pageHeight float64) []int {
	type placed struct {
		top, left float64
		idx       int
	}
	entries := make([]placed, len(boxes))
	for i, b := range boxes {
		entries[i] = placed{
			top:  round3(b.Y0 / pageHeight),
			left: round3(b.X0 / pageWidth),
			idx:  i,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].top != entries[j].top {
			return entries[i].top < entries[j].top
		}
		return entries[i].left < entries[j].left
	})

	perm := make([]int, len(entries))
	for i, e := range entries {
		perm[i] = e.idx
	}
	return perm
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
