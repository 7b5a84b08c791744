package providers

import (
	"context"
	"testing"
	"time"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	mock := NewMockBackend()

	r.RegisterVision("mock", mock)
	r.RegisterAdjudicator("mock", mock)

	v, err := r.GetVision("mock")
	if err != nil {
		t.Fatalf("GetVision() error = %v", err)
	}
	if v.Name() != MockName {
		t.Errorf("Name() = %q", v.Name())
	}

	if _, err := r.GetVision("missing"); err == nil {
		t.Error("expected error for unregistered vision backend")
	}
	if _, err := r.GetAdjudicator("missing"); err == nil {
		t.Error("expected error for unregistered adjudicator backend")
	}

	if names := r.VisionNames(); len(names) != 1 || names[0] != "mock" {
		t.Errorf("VisionNames() = %v", names)
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	limiter := NewRateLimiter(100)

	ctx := context.Background()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	// Cancelled context aborts the wait once tokens run dry.
	drained := NewRateLimiter(1)
	drained.TryConsume()
	cancelled, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := drained.Wait(cancelled); err == nil {
		t.Error("expected context error from drained limiter")
	}
}

func TestRateLimiter_TryConsume(t *testing.T) {
	limiter := NewRateLimiter(2)
	if !limiter.TryConsume() {
		t.Error("first consume should succeed")
	}
	if !limiter.TryConsume() {
		t.Error("second consume should succeed")
	}
	if limiter.TryConsume() {
		t.Error("third consume should fail with burst of 2")
	}
}
