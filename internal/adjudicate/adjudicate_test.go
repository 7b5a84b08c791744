package adjudicate

import (
	"context"
	"strings"
	"testing"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/providers"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/segment"
)

func mkPair(idx int, tText, vText string) Pair {
	return Pair{
		TSeg:       segment.Segment{Text: tText, Kind: segment.KindSentence},
		VSeg:       segment.Segment{Text: vText, Kind: segment.KindSentence},
		PageNum:    0,
		SegmentIdx: idx,
	}
}

func TestResolve_OneResolutionPerPair(t *testing.T) {
	backend := providers.NewMockBackend()
	backend.Pick = "B"
	o := NewOrchestrator(backend, Config{})

	pairs := []Pair{
		mkPair(0, "t zero", "v zero"),
		mkPair(1, "t one", "v one"),
		mkPair(2, "t two", "v two"),
	}

	results := o.Resolve(context.Background(), pairs)
	if len(results) != len(pairs) {
		t.Fatalf("got %d resolutions, want %d", len(results), len(pairs))
	}
	for i, res := range results {
		if res.Fallback {
			t.Errorf("pair %d: unexpected fallback: %s", i, res.FallbackReason)
		}
		if res.Pick != "B" {
			t.Errorf("pair %d: Pick = %q, want B", i, res.Pick)
		}
		if want := pairs[i].VSeg.Text; res.Text != want {
			t.Errorf("pair %d: Text = %q, want %q", i, res.Text, want)
		}
		if res.Backend != providers.MockName {
			t.Errorf("pair %d: Backend = %q", i, res.Backend)
		}
	}
}

func TestResolve_FallbackOnFailure(t *testing.T) {
	backend := providers.NewMockBackend()
	backend.ShouldFail = true
	o := NewOrchestrator(backend, Config{})

	pairs := []Pair{
		mkPair(0, "t candidate zero", "v candidate zero"),
		mkPair(1, "t candidate one", "v candidate one"),
	}

	results := o.Resolve(context.Background(), pairs)
	if len(results) != 2 {
		t.Fatalf("got %d resolutions, want 2", len(results))
	}
	for i, res := range results {
		if !res.Fallback {
			t.Errorf("pair %d: expected fallback resolution", i)
		}
		if res.Pick != "A" {
			t.Errorf("pair %d: fallback Pick = %q, want A", i, res.Pick)
		}
		if want := pairs[i].TSeg.Text; res.Text != want {
			t.Errorf("pair %d: fallback Text = %q, want %q", i, res.Text, want)
		}
		if res.Backend != "" {
			t.Errorf("pair %d: fallback Backend = %q, want empty", i, res.Backend)
		}
		if res.FallbackReason == "" {
			t.Errorf("pair %d: fallback reason missing", i)
		}
	}
}

func TestResolve_PartialFailureDoesNotAbortBatch(t *testing.T) {
	backend := providers.NewMockBackend()
	backend.FailAfter = 1
	o := NewOrchestrator(backend, Config{BatchSize: 1})

	pairs := []Pair{
		mkPair(0, "first t", "first v"),
		mkPair(1, "second t", "second v"),
		mkPair(2, "third t", "third v"),
	}

	results := o.Resolve(context.Background(), pairs)
	if len(results) != 3 {
		t.Fatalf("got %d resolutions, want 3", len(results))
	}

	fallbacks := 0
	for _, res := range results {
		if res.Fallback {
			fallbacks++
		}
	}
	if fallbacks != 2 {
		t.Errorf("fallbacks = %d, want 2", fallbacks)
	}
}

func TestResolve_EmptyBatch(t *testing.T) {
	o := NewOrchestrator(providers.NewMockBackend(), Config{})
	if results := o.Resolve(context.Background(), nil); len(results) != 0 {
		t.Errorf("got %d resolutions for empty batch", len(results))
	}
}

func TestBuildContext(t *testing.T) {
	segs := []segment.Segment{
		{Text: "alpha"},
		{Text: "bravo"},
		{Text: "charlie"},
		{Text: "delta"},
		{Text: "echo"},
		{Text: "foxtrot"},
		{Text: "golf"},
	}

	before, after := BuildContext(segs, 3)
	if before != "alpha bravo charlie" {
		t.Errorf("before = %q", before)
	}
	if after != "echo foxtrot golf" {
		t.Errorf("after = %q", after)
	}

	// Edges.
	before, after = BuildContext(segs, 0)
	if before != "" {
		t.Errorf("before at start = %q, want empty", before)
	}
	if after != "bravo charlie delta" {
		t.Errorf("after at start = %q", after)
	}

	before, after = BuildContext(segs, len(segs)-1)
	if after != "" {
		t.Errorf("after at end = %q, want empty", after)
	}
	if before != "delta echo foxtrot" {
		t.Errorf("before at end = %q", before)
	}
}

func TestBuildContext_Truncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	segs := []segment.Segment{
		{Text: "HEAD" + long},
		{Text: "middle"},
		{Text: long + "TAIL"},
	}

	before, after := BuildContext(segs, 1)
	if got := len([]rune(before)); got != ContextMaxLen {
		t.Errorf("before length = %d, want %d", got, ContextMaxLen)
	}
	if !strings.HasSuffix(before, "x") {
		t.Errorf("before should keep the tail, got suffix %q", before[len(before)-8:])
	}
	if strings.Contains(before, "HEAD") {
		t.Error("before should have dropped its head")
	}

	if got := len([]rune(after)); got != ContextMaxLen {
		t.Errorf("after length = %d, want %d", got, ContextMaxLen)
	}
	if !strings.HasPrefix(after, "x") {
		t.Error("after should keep the head")
	}
	if strings.Contains(after, "TAIL") {
		t.Error("after should have dropped its tail")
	}
}
