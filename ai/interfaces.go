package ai

import "context"

// QueryKind distinguishes which side of the marketplace a rerank query
// represents. The reranker applies different quality criteria to each.
type QueryKind string

const (
	// QueryKindRequest means the query is a need and the candidates are offerings.
	QueryKindRequest QueryKind = "request"
	// QueryKindOffering means the query is a capability and the candidates are requests.
	QueryKindOffering QueryKind = "offering"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a unit-normalized embedding for a single text string.
	// Returns ErrEmbedding if the text is empty, the upstream service fails,
	// or the service returns an empty or wrongly-sized vector.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Transformer rewrites a request as a synthetic offering so it can be
// compared against real offerings in the same embedding space.
// Implementations must be thread-safe for concurrent use.
type Transformer interface {
	// ToSyntheticOffering rewrites the request in first-person, offer-style
	// phrasing, preserving domain specifics. Returns 1-3 sentences of plain
	// text. Returns ErrTransform on empty input or a malformed upstream
	// response.
	ToSyntheticOffering(ctx context.Context, requestText string) (string, error)
}

// Candidate is one entry of the manifest handed to the reranker.
// Index refers back to the caller's candidate slice.
type Candidate struct {
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Company    string  `json:"company"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity_score"`
}

// Reranker selects and orders the best candidates for a query using a
// generative model. Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// Rerank returns at most topK candidate indices, ordered best first.
	// Every returned index is guaranteed to be a valid index into candidates;
	// indices the model invents, repeats, or returns as non-integers are
	// dropped, never surfaced. Returns ErrRerank only when the upstream
	// response cannot be parsed as an index array at all — callers are
	// expected to fall back to similarity order in that case.
	Rerank(ctx context.Context, query string, kind QueryKind, candidates []Candidate, topK int) ([]int, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, Transformer and Reranker instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Transformer returns the request-to-offering rewriting service.
	// The returned Transformer is safe for concurrent use.
	Transformer() Transformer

	// Reranker returns the match reranking service.
	// The returned Reranker is safe for concurrent use.
	Reranker() Reranker

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
