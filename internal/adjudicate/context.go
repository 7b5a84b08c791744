package adjudicate

import (
	"strings"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/segment"
)

const (
	// ContextMaxLen caps each context side sent to the arbitrator.
	ContextMaxLen = 200
	// contextNeighbors is how many segments each side contributes.
	contextNeighbors = 3
)

// BuildContext gathers bounded context around segments[idx]: up to three
// preceding segments truncated to the last ContextMaxLen characters, and
// the symmetric forward construction truncated to the first ContextMaxLen.
func BuildContext(segments []segment.Segment, idx int) (before, after string) {
	lo := max(0, idx-contextNeighbors)
	var beforeParts []string
	for i := lo; i < idx && i < len(segments); i++ {
		beforeParts = append(beforeParts, segments[i].Text)
	}
	before = truncateTail(strings.Join(beforeParts, " "), ContextMaxLen)

	hi := min(len(segments), idx+1+contextNeighbors)
	var afterParts []string
	for i := idx + 1; i < hi; i++ {
		afterParts = append(afterParts, segments[i].Text)
	}
	after = truncateHead(strings.Join(afterParts, " "), ContextMaxLen)

	return before, after
}

// truncateTail keeps the last maxLen runes.
func truncateTail(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[len(runes)-maxLen:])
}

// truncateHead keeps the first maxLen runes.
func truncateHead(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}
