// Package render rasterizes PDF pages for the vision backend.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultDPI is the rendering resolution when none is configured.
const DefaultDPI = 250

// PageRenderer is what the pipeline needs from a rasterizer.
type PageRenderer interface {
	// PageCount returns the number of pages in the document.
	PageCount(pdfPath string) (int, error)

	// Render rasterizes one page (0-indexed) to PNG bytes.
	Render(ctx context.Context, pdfPath string, pageNum int) ([]byte, error)
}

// Renderer rasterizes pages with pdftoppm (poppler-utils), optionally
// caching rendered pages by content hash.
type Renderer struct {
	dpi         int
	maxLongEdge int
	cache       *Cache
	logger      *slog.Logger
}

// Config tunes the renderer. Zero values fall back to the defaults.
type Config struct {
	DPI         int
	MaxLongEdge int // Cap on the long edge in pixels; 0 disables scaling
	Cache       *Cache
	Logger      *slog.Logger
}

// New creates a page renderer.
func New(cfg Config) *Renderer {
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Renderer{
		dpi:         cfg.DPI,
		maxLongEdge: cfg.MaxLongEdge,
		cache:       cfg.Cache,
		logger:      cfg.Logger,
	}
}

// PageCount returns the number of pages in the PDF.
func (r *Renderer) PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// Render rasterizes a single page (0-indexed) using pdftoppm.
func (r *Renderer) Render(ctx context.Context, pdfPath string, pageNum int) ([]byte, error) {
	if r.cache != nil {
		if data, ok := r.cache.Get(pdfPath, pageNum, r.dpi); ok {
			r.logger.Debug("render cache hit", "pdf", filepath.Base(pdfPath), "page_num", pageNum)
			return data, nil
		}
	}

	tmpDir, err := os.MkdirTemp("", "hybridpdf-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// pdftoppm pages are 1-indexed.
	pageStr := strconv.Itoa(pageNum + 1)
	args := []string{
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(r.dpi),
		"-singlefile",
	}
	if r.maxLongEdge > 0 {
		args = append(args, "-scale-to", strconv.Itoa(r.maxLongEdge))
	}
	args = append(args, pdfPath, outputPrefix)

	cmd := exec.CommandContext(ctx, "pdftoppm", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	srcPath := outputPrefix + ".png"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Put(pdfPath, pageNum, r.dpi, data); err != nil {
			r.logger.Warn("failed to cache rendered page", "page_num", pageNum, "error", err)
		}
	}

	return data, nil
}
