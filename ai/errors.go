package ai

import "errors"

var (
	// ErrEmbedding indicates the embedding service failed or produced an unusable vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrTransform indicates the synthetic-offering transformation failed.
	ErrTransform = errors.New("synthetic offering transform failed")

	// ErrRerank indicates the rerank response could not be parsed as an index array.
	ErrRerank = errors.New("rerank response unparseable")
)
