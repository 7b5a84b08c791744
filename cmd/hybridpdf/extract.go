package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/config"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/extract"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/pipeline"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/providers"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/render"
)

var (
	extractOut     string
	extractReport  string
	extractWorkers int
	extractNoLLM   bool
	extractNoCache bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract a PDF to merged markdown",
	Long: `Extract a PDF to merged markdown with per-segment provenance.

Each page runs through the full resolution chain: pdftotext and vision OCR
produce two candidates, which are segmented, aligned, scored, and merged.
Ambiguous segments go to the adjudicator model unless --no-llm is set.

Examples:
  hybridpdf extract book.pdf
  hybridpdf extract book.pdf -o book.md --report book.report.jsonl
  hybridpdf extract book.pdf --no-llm      # deterministic heuristics only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pdfPath := args[0]
		if _, err := os.Stat(pdfPath); err != nil {
			return fmt.Errorf("cannot read PDF: %w", err)
		}

		logger := newLogger()

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()
		if extractWorkers > 0 {
			cfg.Concurrency.MaxWorkers = extractWorkers
		}

		registry, err := buildRegistry(cfg, logger)
		if err != nil {
			return err
		}

		vision, err := registry.GetVision(cfg.Backend.Provider)
		if err != nil {
			return err
		}
		var adjudicator providers.AdjudicatorBackend
		if !extractNoLLM {
			adjudicator, err = registry.GetAdjudicator(cfg.Backend.Provider)
			if err != nil {
				return err
			}
		}

		var cache *render.Cache
		if cfg.Cache.Enabled && !extractNoCache {
			cache = render.NewCache(cfg.Cache.ImageCacheDir)
		}
		renderer := render.New(render.Config{
			DPI:         cfg.Render.DPI,
			MaxLongEdge: cfg.Render.MaxLongEdge,
			Cache:       cache,
			Logger:      logger,
		})

		p, err := pipeline.New(cfg, pipeline.Options{
			Extractor:   extract.NewPopplerExtractor(),
			Renderer:    renderer,
			Vision:      vision,
			Adjudicator: adjudicator,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		outMD := extractOut
		if outMD == "" {
			outMD = strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".md"
		}
		reportPath := extractReport
		if reportPath == "" {
			reportPath = strings.TrimSuffix(outMD, ".md") + ".report.jsonl"
		}

		start := time.Now()
		result, err := p.Extract(cmd.Context(), pdfPath, outMD, reportPath)
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d pages (%d segments) in %s\n",
			result.PagesProcessed, len(result.Records), time.Since(start).Round(time.Millisecond))
		if len(result.SkippedPages) > 0 {
			fmt.Printf("Skipped pages: %v\n", result.SkippedPages)
		}
		fmt.Printf("Markdown: %s\nReport:   %s\n", outMD, reportPath)
		return nil
	},
}

// buildRegistry constructs the configured backend and registers it for both
// roles. The mock backend is available for dry runs without an API key.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*providers.Registry, error) {
	registry := providers.NewRegistry()
	registry.SetLogger(logger)

	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second

	switch cfg.Backend.Provider {
	case providers.OpenAIName:
		apiKey := config.ResolveEnvVars(cfg.Backend.APIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("openai backend requires an API key (set %s)", cfg.Backend.APIKey)
		}
		backend := providers.NewOpenAIBackend(providers.OpenAIConfig{
			APIKey:           apiKey,
			VisionModel:      cfg.Backend.VisionModel,
			AdjudicatorModel: cfg.Backend.AdjudicatorModel,
			Timeout:          timeout,
			MaxRetries:       cfg.Backend.MaxRetries,
			RateLimit:        cfg.Backend.RateLimit,
		})
		registry.RegisterVision(providers.OpenAIName, backend)
		registry.RegisterAdjudicator(providers.OpenAIName, backend)
	case providers.OllamaName:
		backend := providers.NewOllamaBackend(providers.OllamaConfig{
			BaseURL:          cfg.Backend.APIBase,
			VisionModel:      cfg.Backend.VisionModel,
			AdjudicatorModel: cfg.Backend.AdjudicatorModel,
			Timeout:          timeout,
			MaxRetries:       cfg.Backend.MaxRetries,
			RateLimit:        cfg.Backend.RateLimit,
		})
		registry.RegisterVision(providers.OllamaName, backend)
		registry.RegisterAdjudicator(providers.OllamaName, backend)
	case providers.MockName:
		backend := providers.NewMockBackend()
		registry.RegisterVision(providers.MockName, backend)
		registry.RegisterAdjudicator(providers.MockName, backend)
	default:
		return nil, fmt.Errorf("unknown backend provider: %q (want openai, ollama, or mock)", cfg.Backend.Provider)
	}

	return registry, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output markdown path (default: <pdf>.md)")
	extractCmd.Flags().StringVar(&extractReport, "report", "", "provenance report path (default: <out>.report.jsonl)")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "override concurrent page workers")
	extractCmd.Flags().BoolVar(&extractNoLLM, "no-llm", false, "disable LLM adjudication (deterministic prefer-T fallback)")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "disable the rendered-page cache")
}
