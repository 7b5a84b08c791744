// Package provenance assembles final markdown output and the per-segment
// audit trail describing which source produced each emitted segment.
package provenance

import (
	"time"
)

// Source identifies what produced a segment's final text.
type Source string

const (
	SourceT   Source = "T"   // structural text extractor
	SourceV   Source = "V"   // vision OCR backend
	SourceLLM Source = "LLM" // adjudicated by the arbitration backend
)

// Record is an immutable audit entry for one emitted segment. Created at
// decision time, never mutated, serialized to an append-only NDJSON report.
type Record struct {
	PageNum     int       `json:"page_num"`
	SegmentIdx  int       `json:"segment_idx"`
	Source      Source    `json:"source"`
	LLMPick     *string   `json:"llm_pick"` // "A" or "B" when Source is LLM
	TScore      float64   `json:"t_score"`
	VScore      float64   `json:"v_score"`
	ChosenText  string    `json:"chosen_text"`
	BackendUsed *string   `json:"backend_used"` // set when adjudicated
	Timestamp   time.Time `json:"timestamp"`
}
