// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Transformer,
// ai.Reranker, and ai.Provider for use in unit tests. The mocks allow tests to
// run without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vec, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockReranker := mock.NewMockReranker()
//	mockReranker.RerankFunc = func(ctx context.Context, query string, kind ai.QueryKind, candidates []ai.Candidate, topK int) ([]int, error) {
//	    return nil, ai.ErrRerank
//	}
//
//	// Check call counts
//	count := mockReranker.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: returns deterministic unit vectors based on text hash
//   - MockTransformer: prefixes the request with offer-style phrasing
//   - MockReranker: returns the first min(topK, len(candidates)) indices in order
//   - MockProvider: aggregates the three mocks
package mock
