// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/confero/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reranker implements ai.Reranker using OpenAI-compatible chat APIs.
// The model receives a JSON manifest of candidates and returns a bare JSON
// array of candidate indices, best first.
type Reranker struct {
	client llms.Model
	logger *slog.Logger
}

// newReranker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReranker(config *ai.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GenerativeHost),
		openai.WithToken("none"),
		openai.WithModel(config.GenerativeModel),
	)
	if err != nil {
		return nil, err
	}

	return &Reranker{
		client: client,
		logger: slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a new reranker using the provided configuration.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	return newReranker(config)
}

// Rerank asks the model to pick the best topK candidates for the query.
// Returned indices are validated against the candidate slice; anything the
// model invents, repeats, or returns as a non-integer is dropped silently.
// ErrRerank is returned only when the response cannot be parsed as an index
// array at all.
func (r *Reranker) Rerank(ctx context.Context, query string, kind ai.QueryKind, candidates []ai.Candidate, topK int) ([]int, error) {
	if len(candidates) == 0 || topK <= 0 {
		return []int{}, nil
	}

	manifest, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal manifest: %v", ai.ErrRerank, err)
	}

	var prompt string
	switch kind {
	case ai.QueryKindOffering:
		prompt = fmt.Sprintf(rerankOfferingPrompt, query, len(candidates), topK, string(manifest), topK)
	default:
		prompt = fmt.Sprintf(rerankRequestPrompt, query, len(candidates), topK, string(manifest), topK)
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		r.logger.Error("failed to generate rerank response", "kind", kind, "err", err)
		return nil, fmt.Errorf("%w: %v", ai.ErrRerank, err)
	}

	if len(response.Choices) < 1 {
		r.logger.Warn("no choices returned from model", "kind", kind)
		return nil, fmt.Errorf("%w: empty response", ai.ErrRerank)
	}

	responseText := stripCodeFence(response.Choices[0].Content)
	indices, err := parseIndexArray(responseText)
	if err != nil {
		r.logger.Warn("unparseable rerank response",
			"kind", kind,
			"response", responseText,
			"err", err)
		return nil, fmt.Errorf("%w: %v", ai.ErrRerank, err)
	}

	valid := sanitizeIndices(indices, len(candidates), topK)
	if dropped := len(indices) - len(valid); dropped > 0 {
		r.logger.Debug("dropped invalid rerank indices",
			"kind", kind,
			"returned", len(indices),
			"kept", len(valid))
	}
	return valid, nil
}

// parseIndexArray parses the model response as a JSON array of integers.
// Models occasionally emit floats like 3.0; those are accepted when integral.
func parseIndexArray(text string) ([]int, error) {
	var raw []float64
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}

	indices := make([]int, 0, len(raw))
	for _, v := range raw {
		if v != math.Trunc(v) {
			continue
		}
		indices = append(indices, int(v))
	}
	return indices, nil
}

// sanitizeIndices drops out-of-range and duplicate indices and caps the
// result at topK, preserving the model's ordering.
func sanitizeIndices(indices []int, candidateCount, topK int) []int {
	seen := make(map[int]bool, len(indices))
	valid := make([]int, 0, min(topK, len(indices)))
	for _, idx := range indices {
		if idx < 0 || idx >= candidateCount || seen[idx] {
			continue
		}
		seen[idx] = true
		valid = append(valid, idx)
		if len(valid) == topK {
			break
		}
	}
	return valid
}
