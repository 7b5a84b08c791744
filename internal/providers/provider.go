// Package providers holds the vision and adjudicator backend capabilities
// and their concrete implementations.
package providers

import (
	"context"
)

// VisionPrompt is the fixed instruction sent with every page image.
const VisionPrompt = "Convert this single page image to clean GitHub-flavored Markdown. Preserve headings (#…), lists, tables (Markdown pipes), inline formatting. Return Markdown only."

// VisionSystemPrompt frames the vision model as a transcription assistant.
const VisionSystemPrompt = "You are a text extraction assistant. Convert the image to clean GitHub-flavored Markdown. Preserve headings (#…), lists, tables (Markdown pipes), inline formatting. Return Markdown only."

// AdjudicatorSystemPrompt frames the arbitration model as selection-only.
const AdjudicatorSystemPrompt = "You are an extraction adjudicator. Given two alternatives (A and B) for the same snippet, select exactly one. Do not rewrite. Return the chosen text verbatim."

// Adjudication is the parsed reply from an arbitration call.
type Adjudication struct {
	Pick string `json:"pick"` // "A" or "B"
	Text string `json:"text"`
}

// VisionBackend extracts markdown text from a rendered page image.
type VisionBackend interface {
	// Name returns the backend identifier (e.g., "openai", "ollama").
	Name() string

	// Extract converts a PNG page image to markdown, guided by prompt.
	Extract(ctx context.Context, image []byte, prompt string) (string, error)
}

// AdjudicatorBackend arbitrates between two candidate transcriptions of the
// same snippet. Candidate A is always the text-extractor side, B the vision
// side.
type AdjudicatorBackend interface {
	// Name returns the backend identifier.
	Name() string

	// Select picks exactly one of the two candidates.
	Select(ctx context.Context, contextBefore, candidateA, candidateB, contextAfter string) (*Adjudication, error)
}
