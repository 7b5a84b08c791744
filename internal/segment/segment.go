// Package segment splits raw extracted text into typed blocks for alignment.
package segment

import (
	"regexp"
	"strings"
)

// Kind classifies a segment's structural role.
type Kind string

const (
	KindSentence  Kind = "sentence"
	KindParagraph Kind = "paragraph"
	KindTable     Kind = "table"
	KindListItem  Kind = "list_item"
	KindHeading   Kind = "heading"
)

// Segment is an immutable unit of text with its span in the source sequence.
type Segment struct {
	Text  string
	Start int
	End   int
	Kind  Kind
}

// Len returns the length of the segment text in runes.
func (s Segment) Len() int {
	return len([]rune(s.Text))
}

// IsStructural reports whether the segment carries markdown structure
// (table, list item, or heading).
func (s Segment) IsStructural() bool {
	switch s.Kind {
	case KindTable, KindListItem, KindHeading:
		return true
	}
	return false
}

var (
	atxHeadingRe    = regexp.MustCompile(`^#{1,6}\s`)
	setextHeadingRe = regexp.MustCompile(`(?m)^.+\n[-=]{3,}\s*$`)
	listMarkerRe    = regexp.MustCompile(`^\s*(\*|-|\+|\d+\.)\s+`)
)

// IsHeading reports whether text looks like a markdown heading,
// either ATX (# Title) or setext (Title over a ===/--- underline).
func IsHeading(text string) bool {
	if atxHeadingRe.MatchString(strings.TrimSpace(text)) {
		return true
	}
	return setextHeadingRe.MatchString(text)
}

// IsListItem reports whether text starts with a bulleted or numbered list marker.
func IsListItem(text string) bool {
	return listMarkerRe.MatchString(text)
}

// IsTable reports whether text looks like a markdown table: at least two
// lines carry a pipe, and every non-blank line does.
func IsTable(text string) bool {
	lines := strings.Split(text, "\n")
	pipeCount := 0
	for _, line := range lines {
		if strings.Contains(line, "|") {
			pipeCount++
		}
	}
	if pipeCount < 2 {
		return false
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, "|") {
			return false
		}
	}
	return true
}

// classify determines the kind of a block. The table check runs before the
// list and heading checks: a table row starting with "-" is not a list item.
func classify(text string) Kind {
	if IsTable(text) {
		return KindTable
	}
	if IsListItem(text) {
		return KindListItem
	}
	if IsHeading(text) {
		return KindHeading
	}
	if strings.Contains(text, "\n") {
		return KindParagraph
	}
	return KindSentence
}

// Split segments text into blocks on blank-line boundaries and classifies
// each block. It is a pure function of its input; any string is segmentable
// and whitespace-only blocks contribute no segment.
func Split(text string) []Segment {
	var segments []Segment
	var block []string
	start := 0

	flush := func() {
		if len(block) == 0 {
			return
		}
		blockText := strings.Join(block, "\n")
		seg := Segment{
			Text:  blockText,
			Start: start,
			End:   start + len([]rune(blockText)),
			Kind:  classify(blockText),
		}
		segments = append(segments, seg)
		start = seg.End
		block = block[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	return segments
}
