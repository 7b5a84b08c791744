package provenance

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func sampleRecords() []Record {
	now := time.Now().UTC().Truncate(time.Second)
	return []Record{
		{
			PageNum:    0,
			SegmentIdx: 0,
			Source:     SourceT,
			TScore:     0.91,
			VScore:     0.72,
			ChosenText: "First paragraph.",
			Timestamp:  now,
		},
		{
			PageNum:     0,
			SegmentIdx:  1,
			Source:      SourceLLM,
			LLMPick:     strPtr("B"),
			TScore:      0.55,
			VScore:      0.54,
			ChosenText:  "Second paragraph.",
			BackendUsed: strPtr("ollama"),
			Timestamp:   now,
		},
		{
			PageNum:    1,
			SegmentIdx: 0,
			Source:     SourceV,
			TScore:     0.30,
			VScore:     0.85,
			ChosenText: "| a | b |",
			Timestamp:  now,
		},
	}
}

func TestReportRoundTrip(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	if err := WriteReport(&buf, records); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	if got := strings.Count(buf.String(), "\n"); got != len(records) {
		t.Errorf("report has %d lines, want %d", got, len(records))
	}

	parsed, err := ReadReport(&buf)
	if err != nil {
		t.Fatalf("ReadReport() error = %v", err)
	}
	if len(parsed) != len(records) {
		t.Fatalf("round-trip produced %d records, want %d", len(parsed), len(records))
	}

	for i, rec := range parsed {
		want := records[i]
		if rec.PageNum != want.PageNum || rec.SegmentIdx != want.SegmentIdx {
			t.Errorf("record %d: position = (%d,%d), want (%d,%d)",
				i, rec.PageNum, rec.SegmentIdx, want.PageNum, want.SegmentIdx)
		}
		if rec.Source != want.Source {
			t.Errorf("record %d: Source = %q, want %q", i, rec.Source, want.Source)
		}
		if rec.TScore != want.TScore || rec.VScore != want.VScore {
			t.Errorf("record %d: scores = (%v,%v), want (%v,%v)",
				i, rec.TScore, rec.VScore, want.TScore, want.VScore)
		}
		if rec.ChosenText != want.ChosenText {
			t.Errorf("record %d: ChosenText = %q", i, rec.ChosenText)
		}
		if (rec.LLMPick == nil) != (want.LLMPick == nil) {
			t.Errorf("record %d: LLMPick nil mismatch", i)
		} else if rec.LLMPick != nil && *rec.LLMPick != *want.LLMPick {
			t.Errorf("record %d: LLMPick = %q, want %q", i, *rec.LLMPick, *want.LLMPick)
		}
		if (rec.BackendUsed == nil) != (want.BackendUsed == nil) {
			t.Errorf("record %d: BackendUsed nil mismatch", i)
		}
		if !rec.Timestamp.Equal(want.Timestamp) {
			t.Errorf("record %d: Timestamp = %v, want %v", i, rec.Timestamp, want.Timestamp)
		}
	}
}

func TestReport_NullFields(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleRecords()[:1]); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, `"llm_pick":null`) {
		t.Errorf("expected null llm_pick for deterministic record: %s", line)
	}
	if !strings.Contains(line, `"backend_used":null`) {
		t.Errorf("expected null backend_used for deterministic record: %s", line)
	}
}

func TestAssemble(t *testing.T) {
	got := Assemble(sampleRecords())
	want := "First paragraph.\n\nSecond paragraph.\n\n| a | b |"
	if got != want {
		t.Errorf("Assemble() = %q, want %q", got, want)
	}
}

func TestAnnotate(t *testing.T) {
	records := sampleRecords()
	markdown := Assemble(records)
	annotated := Annotate(markdown, records)

	wantMarkers := []string{"<!-- src:T -->", "<!-- src:LLM:B -->", "<!-- src:V -->"}
	for _, m := range wantMarkers {
		if !strings.Contains(annotated, m) {
			t.Errorf("annotated output missing marker %q:\n%s", m, annotated)
		}
	}

	// Markers appear in emission order.
	lastIdx := -1
	for _, m := range wantMarkers {
		idx := strings.Index(annotated, m)
		if idx < lastIdx {
			t.Errorf("marker %q out of order", m)
		}
		lastIdx = idx
	}
}

func TestAnnotate_Empty(t *testing.T) {
	if got := Annotate("", nil); got != "" {
		t.Errorf("Annotate(empty) = %q", got)
	}
	if got := Annotate("text", nil); got != "text" {
		t.Errorf("Annotate with no records = %q", got)
	}
}
