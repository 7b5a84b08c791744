// Package align pairs segments from the text-extraction (T) and vision (V)
// candidate sequences for one page.
package align

import (
	"github.com/PhilUlb/hybrid-pdf-parser/internal/segment"
)

const (
	// DefaultWindow is how far ahead in V each T segment may look for a match.
	DefaultWindow = 3
	// DefaultThreshold is the minimum 0-100 similarity for a match.
	DefaultThreshold = 50
)

// Pair correlates zero-or-one T segment with zero-or-one V segment.
// At least one side is always present.
type Pair struct {
	T          *segment.Segment
	V          *segment.Segment
	Similarity float64 // 0-1, 0 when either side is absent
}

// Options tune the greedy matcher. Zero values fall back to the defaults.
type Options struct {
	Window    int // forward look-ahead into V
	Threshold int // 0-100 match threshold
}

// Pairs aligns the two sequences with greedy windowed matching. Linear-time
// on page-length sequences; true reordering is rare enough that full
// edit-distance alignment is not worth it. Every input segment from both
// sequences appears exactly once in the output, and ties inside the window
// resolve to the first-encountered maximum.
func Pairs(tSegs, vSegs []segment.Segment, opts Options) []Pair {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	tNorm := make([]string, len(tSegs))
	for i, seg := range tSegs {
		tNorm[i] = Normalize(seg.Text)
	}
	vNorm := make([]string, len(vSegs))
	for i, seg := range vSegs {
		vNorm[i] = Normalize(seg.Text)
	}

	var pairs []Pair
	i, j := 0, 0

	for i < len(tSegs) || j < len(vSegs) {
		if i >= len(tSegs) {
			pairs = append(pairs, Pair{V: &vSegs[j]})
			j++
			continue
		}
		if j >= len(vSegs) {
			pairs = append(pairs, Pair{T: &tSegs[i]})
			i++
			continue
		}

		best := 0
		bestK := 0
		for k := 0; j+k < len(vSegs) && k < window; k++ {
			if r := Ratio(tNorm[i], vNorm[j+k]); r > best {
				best = r
				bestK = k
			}
		}

		if best > threshold {
			// Flush skipped V segments as unmatched before the match.
			for k := 0; k < bestK; k++ {
				pairs = append(pairs, Pair{V: &vSegs[j+k]})
			}
			pairs = append(pairs, Pair{
				T:          &tSegs[i],
				V:          &vSegs[j+bestK],
				Similarity: float64(best) / 100.0,
			})
			i++
			j += bestK + 1
		} else {
			// Hold the V cursor: a later T segment may still match this
			// V region.
			pairs = append(pairs, Pair{T: &tSegs[i]})
			i++
		}
	}

	return pairs
}
