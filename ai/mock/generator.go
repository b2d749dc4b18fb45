package mock

import (
	"context"
	"fmt"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	// If nil, uses default deterministic behavior.
	GenerateAnswerFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

	callCount   int
	lastPrompt  string
	lastMaxToks int
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateAnswer returns a canned answer derived from the prompt length.
func (m *MockGenerator) GenerateAnswer(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.callCount++
	m.lastPrompt = prompt
	m.lastMaxToks = maxTokens

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, prompt, maxTokens)
	}

	return fmt.Sprintf("mock answer (prompt length %d)", len(prompt)), nil
}

// CallCount returns the number of times GenerateAnswer was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastPrompt returns the prompt passed to the most recent call.
func (m *MockGenerator) LastPrompt() string {
	return m.lastPrompt
}

// LastMaxTokens returns the token budget passed to the most recent call.
func (m *MockGenerator) LastMaxTokens() int {
	return m.lastMaxToks
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastPrompt = ""
	m.lastMaxToks = 0
	m.GenerateAnswerFunc = nil
}
