package mock

import (
	"context"
	"strings"
	"sync"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
// Safe for concurrent use; the enrichment sub-tasks call it in parallel.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default canned behavior keyed on the prompt contents.
	CompleteFunc func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)

	mu        sync.Mutex
	callCount int
	prompts   []string
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Complete returns a canned response chosen by sniffing the prompt.
// The defaults satisfy the pipeline's output contracts: a short summary,
// a comma-delimited tag line, and a valid mood label.
func (m *MockGenerator) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, maxTokens, temperature)
	}

	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "mood"):
		return "calm", nil
	case strings.Contains(lower, "tags"):
		return "reflection, daily life, gratitude", nil
	default:
		return "A quiet day spent writing. The entry reflects on small routines.", nil
	}
}

// CallCount returns the number of times Complete was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns every prompt Complete has been called with, in order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Reset clears the call count, recorded prompts, and custom functions.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.CompleteFunc = nil
}
