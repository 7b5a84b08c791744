// Package extract produces the structural text candidate ("T") for a page.
package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/textutil"
)

// TextExtractor produces the T candidate for one page. The pipeline treats
// the output as an opaque string to segment.
type TextExtractor interface {
	// Name returns the extractor identifier for diagnostics.
	Name() string

	// ExtractText returns the raw text of one page (0-indexed).
	ExtractText(ctx context.Context, pdfPath string, pageNum int) (string, error)
}

// PopplerExtractor extracts page text with pdftotext (poppler-utils) and
// applies hyphenation repair and whitespace normalization.
type PopplerExtractor struct{}

// NewPopplerExtractor creates the default text extractor.
func NewPopplerExtractor() *PopplerExtractor {
	return &PopplerExtractor{}
}

// Name returns the extractor identifier.
func (e *PopplerExtractor) Name() string {
	return "pdftotext"
}

// ExtractText runs pdftotext for a single page and cleans the result.
func (e *PopplerExtractor) ExtractText(ctx context.Context, pdfPath string, pageNum int) (string, error) {
	// pdftotext pages are 1-indexed; "-" writes to stdout.
	pageStr := strconv.Itoa(pageNum + 1)
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", pageStr,
		"-l", pageStr,
		"-layout",
		pdfPath,
		"-",
	)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("pdftotext failed: %w (stderr: %s)", err, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	text := textutil.RepairHyphenation(string(output))
	text = textutil.NormalizeWhitespace(text)
	return text, nil
}
