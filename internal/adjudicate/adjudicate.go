// Package adjudicate resolves ambiguous segment pairs through an external
// arbitration backend, batching calls and falling back deterministically
// when a call fails.
package adjudicate

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PhilUlb/hybrid-pdf-parser/internal/providers"
	"github.com/PhilUlb/hybrid-pdf-parser/internal/segment"
)

const (
	// DefaultBatchSize bounds concurrent arbitration calls within a batch.
	DefaultBatchSize = 10
	// DefaultCallTimeout bounds each arbitration call.
	DefaultCallTimeout = 60 * time.Second
)

// Pair is an aligned pair with both sides present that the deterministic
// selector could not resolve, plus the surrounding context sent to the
// arbitrator. Consumed exactly once.
type Pair struct {
	TSeg          segment.Segment
	VSeg          segment.Segment
	ContextBefore string
	ContextAfter  string
	PageNum       int
	SegmentIdx    int
}

// Resolution is the outcome for one Pair. The orchestrator never drops a
// pair: a failed call yields a fallback resolution instead of an error.
type Resolution struct {
	Pick string // "A" (T side) or "B" (V side)
	Text string

	// Fallback is set when the arbitration call failed and the
	// deterministic prefer-T fallback was substituted.
	Fallback       bool
	FallbackReason string

	// Backend names the backend that resolved the pair (empty on fallback).
	Backend string
}

// Orchestrator batches ambiguous pairs against an arbitration backend.
type Orchestrator struct {
	backend   providers.AdjudicatorBackend
	batchSize int
	timeout   time.Duration
	logger    *slog.Logger
}

// Config tunes the orchestrator. Zero values fall back to the defaults.
type Config struct {
	BatchSize   int
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given backend.
func NewOrchestrator(backend providers.AdjudicatorBackend, cfg Config) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		backend:   backend,
		batchSize: cfg.BatchSize,
		timeout:   cfg.CallTimeout,
		logger:    cfg.Logger,
	}
}

// Resolve arbitrates every pair and returns one resolution per input pair,
// in input order. Pairs are independent, so calls within the batch run
// concurrently, bounded by the batch size. Candidate A is always the T
// segment's text, candidate B the V segment's.
func (o *Orchestrator) Resolve(ctx context.Context, pairs []Pair) []Resolution {
	results := make([]Resolution, len(pairs))
	if len(pairs) == 0 {
		return results
	}

	sem := make(chan struct{}, o.batchSize)
	done := make(chan int, len(pairs))

	for i := range pairs {
		sem <- struct{}{} // acquire
		go func(idx int) {
			defer func() { <-sem }() // release
			results[idx] = o.resolveOne(ctx, pairs[idx])
			done <- idx
		}(i)
	}

	for range pairs {
		<-done
	}
	return results
}

// resolveOne arbitrates a single pair, substituting the prefer-T fallback
// on any failure so the batch is never aborted.
func (o *Orchestrator) resolveOne(ctx context.Context, pair Pair) Resolution {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	requestID := uuid.New().String()

	adj, err := o.backend.Select(callCtx,
		truncateTail(pair.ContextBefore, ContextMaxLen),
		pair.TSeg.Text,
		pair.VSeg.Text,
		truncateHead(pair.ContextAfter, ContextMaxLen),
	)
	if err != nil {
		o.logger.Warn("adjudication failed, falling back to T candidate",
			"request_id", requestID,
			"page_num", pair.PageNum,
			"segment_idx", pair.SegmentIdx,
			"error", err)
		return Resolution{
			Pick:           "A",
			Text:           pair.TSeg.Text,
			Fallback:       true,
			FallbackReason: err.Error(),
		}
	}

	text := adj.Text
	if text == "" {
		if adj.Pick == "B" {
			text = pair.VSeg.Text
		} else {
			text = pair.TSeg.Text
		}
	}

	o.logger.Debug("adjudicated segment",
		"request_id", requestID,
		"page_num", pair.PageNum,
		"segment_idx", pair.SegmentIdx,
		"pick", adj.Pick)

	return Resolution{
		Pick:    adj.Pick,
		Text:    text,
		Backend: o.backend.Name(),
	}
}
