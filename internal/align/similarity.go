package align

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Normalize prepares segment text for comparison: lowercase, trimmed, with
// internal whitespace runs collapsed to single spaces. Comparison-only; the
// stored segment text is never altered.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Ratio returns a similarity score in 0-100 between two normalized strings,
// derived from edit distance over the longer length. Two empty strings are
// identical (100).
func Ratio(a, b string) int {
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	r := 100 - (100*dist+longest/2)/longest
	if r < 0 {
		return 0
	}
	return r
}
