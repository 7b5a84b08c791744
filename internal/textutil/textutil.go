// Package textutil holds text cleanup helpers shared by the extraction adapters.
package textutil

import (
	"regexp"
	"strings"
)

var (
	hyphenBreakRe = regexp.MustCompile(`([a-zA-Z][\w]*)-[\n\r]+(\w+)`)
	spaceRunRe    = regexp.MustCompile(` +`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

// RepairHyphenation merges words split across line breaks by a trailing
// hyphen ("exam-\nple" -> "example"). All-caps prefixes are left alone so
// hyphenated acronyms survive.
func RepairHyphenation(text string) string {
	return hyphenBreakRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := hyphenBreakRe.FindStringSubmatch(match)
		first, second := parts[1], parts[2]
		if first == strings.ToUpper(first) && len(first) > 1 {
			return match
		}
		return first + second
	})
}

// NormalizeWhitespace collapses space runs, caps blank-line runs at one
// blank line, and strips each line's edges.
func NormalizeWhitespace(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
