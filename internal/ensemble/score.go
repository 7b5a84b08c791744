// Package ensemble holds the deterministic quality scoring and selection
// policy applied to each aligned segment pair.
package ensemble

import (
	"strings"
	"unicode"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/segment"
)

// garbleRune is the replacement character faulty decoders emit.
const garbleRune = '�'

// Score computes a quality score in [0,1] for a segment. Pure and
// deterministic: alphanumeric density dominates, garbled characters
// penalize, reasonable token lengths and markdown structure earn a bonus.
// A nil or empty segment scores exactly 0.
func Score(seg *segment.Segment) float64 {
	if seg == nil || seg.Text == "" {
		return 0.0
	}

	runes := []rune(seg.Text)
	total := len(runes)

	alnum := 0
	weird := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
		if r == garbleRune {
			weird++
		}
	}
	alnumRatio := float64(alnum) / float64(total)
	weirdRatio := float64(weird) / float64(total)

	avgTokenLen := 0.0
	if tokens := strings.Fields(seg.Text); len(tokens) > 0 {
		sum := 0
		for _, tok := range tokens {
			sum += len([]rune(tok))
		}
		avgTokenLen = float64(sum) / float64(len(tokens))
	}

	structuralBonus := 0.0
	switch seg.Kind {
	case segment.KindTable:
		structuralBonus = 0.2
	case segment.KindListItem:
		structuralBonus = 0.15
	case segment.KindHeading:
		structuralBonus = 0.1
	}

	score := alnumRatio*0.6 +
		(1-weirdRatio)*0.3 +
		min(avgTokenLen/10.0, 0.1) +
		structuralBonus

	return min(max(score, 0.0), 1.0)
}
