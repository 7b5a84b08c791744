package ensemble

import (
	"fmt"
	"math"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/segment"
)

// Source identifies which candidate a Choice picked.
type Source string

const (
	SourceT         Source = "T"
	SourceV         Source = "V"
	SourceLLM       Source = "LLM"
	SourceAmbiguous Source = "AMBIGUOUS"
)

// Choice is the selection verdict for one aligned pair. Reason is
// diagnostic only, never machine-parsed.
type Choice struct {
	Source       Source
	SelectedText string
	Reason       string
}

// Config tunes the selection policy.
type Config struct {
	// ScoreMargin is the minimum score difference to prefer the
	// higher-scoring candidate.
	ScoreMargin float64
	// AmbiguityBand is the score difference below which neither candidate
	// is confidently better.
	AmbiguityBand float64
}

// DefaultConfig returns the standard selection thresholds.
func DefaultConfig() Config {
	return Config{ScoreMargin: 0.15, AmbiguityBand: 0.05}
}

// Choose applies the selection policy to a scored pair. Total and pure:
// identical inputs always yield an identical Choice. Rules fire in order;
// the first match wins.
func Choose(tSeg, vSeg *segment.Segment, tScore, vScore float64, cfg Config) Choice {
	// Both absent should not occur given the aligner invariant.
	if tSeg == nil && vSeg == nil {
		return Choice{Source: SourceT, SelectedText: "", Reason: "no segments available"}
	}
	if tSeg == nil {
		return Choice{Source: SourceV, SelectedText: vSeg.Text, Reason: "T segment missing"}
	}
	if vSeg == nil {
		return Choice{Source: SourceT, SelectedText: tSeg.Text, Reason: "V segment missing"}
	}

	scoreDiff := math.Abs(tScore - vScore)

	if scoreDiff < cfg.AmbiguityBand {
		tLen := tSeg.Len()
		vLen := vSeg.Len()
		shorter := min(tLen, vLen)
		longer := max(tLen, vLen)
		if shorter == 0 {
			// A present-but-empty side makes the length-ratio condition
			// vacuously true.
			return Choice{
				Source: SourceAmbiguous,
				Reason: fmt.Sprintf("ambiguous: scores too close (diff=%.3f), one side empty", scoreDiff),
			}
		}
		if ratio := float64(longer) / float64(shorter); ratio > 1.5 {
			return Choice{
				Source: SourceAmbiguous,
				Reason: fmt.Sprintf("ambiguous: scores too close (diff=%.3f, len_ratio=%.2f)", scoreDiff, ratio),
			}
		}
	}

	// Structure is a strong, hard-to-hallucinate signal from vision OCR.
	if vSeg.IsStructural() && !tSeg.IsStructural() {
		return Choice{
			Source:       SourceV,
			SelectedText: vSeg.Text,
			Reason:       fmt.Sprintf("V has %s structure, T does not", vSeg.Kind),
		}
	}

	if tScore > vScore+cfg.ScoreMargin {
		return Choice{
			Source:       SourceT,
			SelectedText: tSeg.Text,
			Reason:       fmt.Sprintf("T score higher by %.3f", tScore-vScore),
		}
	}
	if vScore > tScore+cfg.ScoreMargin {
		return Choice{
			Source:       SourceV,
			SelectedText: vSeg.Text,
			Reason:       fmt.Sprintf("V score higher by %.3f", vScore-tScore),
		}
	}

	// Text-first bias: the structural extractor is the trusted baseline.
	return Choice{Source: SourceT, SelectedText: tSeg.Text, Reason: "default: text-first preferred"}
}
