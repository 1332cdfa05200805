package mock

import (
	"context"
	"sync"
)

// MockTransformer is a test double for ai.Transformer.
// It allows custom behavior injection via function fields.
type MockTransformer struct {
	// ToSyntheticOfferingFunc is called by ToSyntheticOffering if set.
	// If nil, uses default deterministic behavior.
	ToSyntheticOfferingFunc func(ctx context.Context, requestText string) (string, error)

	mu        sync.Mutex
	callCount int
}

// NewMockTransformer creates a mock transformer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockTransformer().
func NewMockTransformer() *MockTransformer {
	return &MockTransformer{}
}

// ToSyntheticOffering returns a deterministic offer-style rewrite of the request.
func (m *MockTransformer) ToSyntheticOffering(ctx context.Context, requestText string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ToSyntheticOfferingFunc != nil {
		return m.ToSyntheticOfferingFunc(ctx, requestText)
	}

	return "Happy to help with: " + requestText, nil
}

// CallCount returns the number of times ToSyntheticOffering was called.
func (m *MockTransformer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockTransformer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ToSyntheticOfferingFunc = nil
}
