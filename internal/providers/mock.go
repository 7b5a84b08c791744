package providers

import (
	"context"
	"fmt"
	"sync/atomic"
)

const MockName = "mock"

// MockBackend implements VisionBackend and AdjudicatorBackend for testing.
type MockBackend struct {
	// Configurable behavior
	VisionText string
	Pick       string // "A" or "B"
	PickText   string // Defaults to the picked candidate's text
	ShouldFail bool
	FailAfter  int // Fail after N requests (0 = never)

	// State
	requestCount atomic.Int64
}

// NewMockBackend creates a mock backend with sensible defaults.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		VisionText: "mock vision output",
		Pick:       "A",
	}
}

// Name returns the backend identifier.
func (m *MockBackend) Name() string {
	return MockName
}

// Requests returns how many calls the mock has served.
func (m *MockBackend) Requests() int64 {
	return m.requestCount.Load()
}

func (m *MockBackend) fail() bool {
	n := m.requestCount.Add(1)
	if m.ShouldFail {
		return true
	}
	return m.FailAfter > 0 && n > int64(m.FailAfter)
}

// Extract returns the configured vision text.
func (m *MockBackend) Extract(ctx context.Context, image []byte, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.fail() {
		return "", fmt.Errorf("mock vision failure")
	}
	return m.VisionText, nil
}

// Select returns the configured pick.
func (m *MockBackend) Select(ctx context.Context, contextBefore, candidateA, candidateB, contextAfter string) (*Adjudication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.fail() {
		return nil, fmt.Errorf("mock adjudication failure")
	}
	text := m.PickText
	if text == "" {
		if m.Pick == "B" {
			text = candidateB
		} else {
			text = candidateA
		}
	}
	return &Adjudication{Pick: m.Pick, Text: text}, nil
}
