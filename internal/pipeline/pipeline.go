// Package pipeline runs the per-page ensemble resolution chain and fans
// pages out over a bounded worker pool.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/config"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/extract"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/providers"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/provenance"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/render"
)

// Pipeline reconciles the text and vision candidates for every page of a
// document. One instance of the chain runs per page, independently.
type Pipeline struct {
	cfg         *config.Config
	extractor   extract.TextExtractor
	renderer    render.PageRenderer
	vision      providers.VisionBackend
	adjudicator providers.AdjudicatorBackend // optional
	logger      *slog.Logger
}

// Options wires the pipeline's collaborators.
type Options struct {
	Extractor   extract.TextExtractor
	Renderer    render.PageRenderer
	Vision      providers.VisionBackend
	Adjudicator providers.AdjudicatorBackend // nil disables adjudication
	Logger      *slog.Logger
}

// Result is the outcome of one document extraction.
type Result struct {
	Markdown       string
	Records        []provenance.Record
	PagesProcessed int
	SkippedPages   []int
}

// New creates a pipeline.
func New(cfg *config.Config, opts Options) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Extractor == nil {
		return nil, fmt.Errorf("text extractor is required")
	}
	if opts.Renderer == nil {
		return nil, fmt.Errorf("page renderer is required")
	}
	if opts.Vision == nil {
		return nil, fmt.Errorf("vision backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:         cfg,
		extractor:   opts.Extractor,
		renderer:    opts.Renderer,
		vision:      opts.Vision,
		adjudicator: opts.Adjudicator,
		logger:      logger,
	}, nil
}

// pageResult pairs a completed page with its records for collection.
// Records for a page are delivered all at once or not at all.
type pageResult struct {
	pageNum int
	records []provenance.Record
	err     error
}

// Extract runs the full document: every page through the resolution chain
// on a bounded worker pool, decisions merged back into page order, outputs
// written to outMD and reportPath (either may be empty to skip the write).
func (p *Pipeline) Extract(ctx context.Context, pdfPath, outMD, reportPath string) (*Result, error) {
	pageCount, err := p.renderer.PageCount(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	p.logger.Info("starting extraction",
		"pdf", filepath.Base(pdfPath),
		"pages", pageCount,
		"vision_backend", p.vision.Name(),
		"max_workers", p.cfg.Concurrency.MaxWorkers)

	maxWorkers := p.cfg.Concurrency.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	sem := make(chan struct{}, maxWorkers)
	results := make(chan pageResult, pageCount)

	for page := 0; page < pageCount; page++ {
		sem <- struct{}{} // acquire
		go func(pageNum int) {
			defer func() { <-sem }() // release

			records, err := p.resolvePage(ctx, pdfPath, pageNum)
			results <- pageResult{pageNum: pageNum, records: records, err: err}
		}(page)
	}

	// Pages complete out of order; final ordering is restored by page
	// number below.
	byPage := make([][]provenance.Record, pageCount)
	var skipped []int
	for i := 0; i < pageCount; i++ {
		res := <-results
		if res.err != nil {
			if !p.cfg.Pipeline.SkipFailedPages {
				return nil, fmt.Errorf("page %d failed: %w", res.pageNum, res.err)
			}
			p.logger.Warn("skipping failed page", "page_num", res.pageNum, "error", res.err)
			skipped = append(skipped, res.pageNum)
			continue
		}
		byPage[res.pageNum] = res.records
	}
	sort.Ints(skipped)

	var allRecords []provenance.Record
	for _, records := range byPage {
		allRecords = append(allRecords, records...)
	}

	markdown := provenance.Assemble(allRecords)
	annotated := provenance.Annotate(markdown, allRecords)

	if outMD != "" {
		if err := os.MkdirAll(filepath.Dir(outMD), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outMD, []byte(annotated), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write markdown: %w", err)
		}
	}
	if reportPath != "" {
		if err := provenance.WriteReportFile(reportPath, allRecords); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
	}

	p.logger.Info("extraction complete",
		"pages", pageCount,
		"segments", len(allRecords),
		"skipped_pages", len(skipped))

	return &Result{
		Markdown:       annotated,
		Records:        allRecords,
		PagesProcessed: pageCount - len(skipped),
		SkippedPages:   skipped,
	}, nil
}

// now is stubbed in tests for stable timestamps.
var now = func() time.Time { return time.Now().UTC() }
