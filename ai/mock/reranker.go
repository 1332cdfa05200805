package mock

import (
	"context"
	"sync"

	"github.com/poiesic/confero/ai"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, uses default deterministic behavior.
	RerankFunc func(ctx context.Context, query string, kind ai.QueryKind, candidates []ai.Candidate, topK int) ([]int, error)

	mu        sync.Mutex
	callCount int
}

// NewMockReranker creates a mock reranker with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockReranker().
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank returns the first min(topK, len(candidates)) indices in input order,
// mimicking a model that agrees with the similarity ranking.
func (m *MockReranker) Rerank(ctx context.Context, query string, kind ai.QueryKind, candidates []ai.Candidate, topK int) ([]int, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, kind, candidates, topK)
	}

	n := len(candidates)
	if topK < n {
		n = topK
	}
	if n < 0 {
		n = 0
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices, nil
}

// CallCount returns the number of times Rerank was called.
func (m *MockReranker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockReranker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.RerankFunc = nil
}
