package main

import (
	"github.com/spf13/cobra"

	"github.com/PhilUlb/hybrid-pdf-parser/version"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hybridpdf",
	Short: "Hybrid PDF extraction with ensemble resolution",
	Long: `hybridpdf reconciles two imperfect transcriptions of each PDF page:
the structural text layer (pdftotext) and a vision-model OCR pass.

For every page both candidates are segmented, aligned by fuzzy matching,
scored for plausibility, and merged segment by segment. Segments the
deterministic heuristics cannot settle are arbitrated by an LLM. The output
is merged markdown plus a per-segment provenance report.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.hybridpdf/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
