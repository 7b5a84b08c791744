package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/adjudicate"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/align"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/ensemble"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/providers"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/provenance"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/segment"
)

// resolvePage runs the resolution chain for one page: extract both
// candidates, segment, align, score, select, adjudicate the ambiguous
// pairs, and emit one provenance record per segment in segment-index
// order. Records are returned only for a fully resolved page.
func (p *Pipeline) resolvePage(ctx context.Context, pdfPath string, pageNum int) ([]provenance.Record, error) {
	tText, err := p.extractor.ExtractText(ctx, pdfPath, pageNum)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}

	image, err := p.renderer.Render(ctx, pdfPath, pageNum)
	if err != nil {
		return nil, fmt.Errorf("page render failed: %w", err)
	}

	// A vision failure is fatal to the V-sequence only: the page still
	// flows through alignment and resolves every segment to T.
	vText, err := p.vision.Extract(ctx, image, providers.VisionPrompt)
	if err != nil {
		p.logger.Warn("vision extraction failed, falling back to T-only resolution",
			"page_num", pageNum, "error", err)
		vText = ""
	}

	tSegs := segment.Split(tText)
	vSegs := segment.Split(vText)

	pairs := align.Pairs(tSegs, vSegs, align.Options{
		Window:    p.cfg.Heuristics.AlignWindow,
		Threshold: p.cfg.Heuristics.AlignThreshold,
	})

	heur := ensemble.Config{
		ScoreMargin:   p.cfg.Heuristics.ScoreMargin,
		AmbiguityBand: p.cfg.Heuristics.AmbiguityBand,
	}

	records := make([]provenance.Record, len(pairs))
	var ambiguous []adjudicate.Pair
	ambiguousAt := make([]int, 0)

	tIdx := -1 // index of the current pair's T segment within tSegs
	for segIdx, pair := range pairs {
		if pair.T != nil {
			tIdx++
		}

		tScore := ensemble.Score(pair.T)
		vScore := ensemble.Score(pair.V)
		choice := ensemble.Choose(pair.T, pair.V, tScore, vScore, heur)

		if choice.Source == ensemble.SourceAmbiguous && p.adjudicator != nil {
			// Context comes from the owning T-sequence around this pair.
			before, after := adjudicate.BuildContext(tSegs, tIdx)
			ambiguous = append(ambiguous, adjudicate.Pair{
				TSeg:          *pair.T,
				VSeg:          *pair.V,
				ContextBefore: before,
				ContextAfter:  after,
				PageNum:       pageNum,
				SegmentIdx:    segIdx,
			})
			ambiguousAt = append(ambiguousAt, segIdx)
			// Placeholder; overwritten once the batch resolves.
			records[segIdx] = provenance.Record{
				PageNum:    pageNum,
				SegmentIdx: segIdx,
				TScore:     tScore,
				VScore:     vScore,
			}
			continue
		}

		source := provenance.Source(choice.Source)
		text := choice.SelectedText
		if choice.Source == ensemble.SourceAmbiguous {
			// No adjudicator configured: deterministic prefer-T fallback.
			source = provenance.SourceT
			text = pair.T.Text
		}

		p.logger.Debug("selected segment",
			"page_num", pageNum,
			"segment_idx", segIdx,
			"source", source,
			"reason", choice.Reason)

		records[segIdx] = provenance.Record{
			PageNum:    pageNum,
			SegmentIdx: segIdx,
			Source:     source,
			TScore:     tScore,
			VScore:     vScore,
			ChosenText: text,
			Timestamp:  now(),
		}
	}

	if len(ambiguous) > 0 {
		orchestrator := adjudicate.NewOrchestrator(p.adjudicator, adjudicate.Config{
			BatchSize:   p.cfg.Concurrency.BatchSize,
			CallTimeout: p.backendTimeout(),
			Logger:      p.logger,
		})
		resolutions := orchestrator.Resolve(ctx, ambiguous)

		for i, res := range resolutions {
			segIdx := ambiguousAt[i]
			rec := &records[segIdx]
			rec.ChosenText = res.Text
			rec.Timestamp = now()

			if res.Fallback {
				// The arbitration call failed: the deterministic prefer-T
				// fallback resolved the pair, so the record does not claim
				// an LLM source.
				rec.Source = provenance.SourceT
				continue
			}
			pick := res.Pick
			backend := res.Backend
			rec.Source = provenance.SourceLLM
			rec.LLMPick = &pick
			rec.BackendUsed = &backend
		}
	}

	return records, nil
}

func (p *Pipeline) backendTimeout() time.Duration {
	if p.cfg.Backend.TimeoutSeconds > 0 {
		return time.Duration(p.cfg.Backend.TimeoutSeconds) * time.Second
	}
	return adjudicate.DefaultCallTimeout
}
