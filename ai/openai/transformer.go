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
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/confero/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Transformer implements ai.Transformer using OpenAI-compatible chat APIs.
// It rewrites a request in offer-style phrasing so the result embeds into
// the same region of vector space as real offerings.
type Transformer struct {
	client llms.Model
	logger *slog.Logger
}

// newTransformer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTransformer(config *ai.Config) (*Transformer, error) {
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

	return &Transformer{
		client: client,
		logger: slog.Default().With("component", "openai-transformer"),
	}, nil
}

// NewTransformer creates a new transformer using the provided configuration.
//
// Returns ai.Transformer interface to enforce abstraction.
func NewTransformer(config *ai.Config) (ai.Transformer, error) {
	return newTransformer(config)
}

// ToSyntheticOffering rewrites the request as how someone able to fulfill it
// would describe their offering. The model is asked for 1-3 sentences of
// plain text with no preamble.
func (t *Transformer) ToSyntheticOffering(ctx context.Context, requestText string) (string, error) {
	requestText = strings.TrimSpace(requestText)
	if requestText == "" {
		return "", fmt.Errorf("%w: empty request text", ai.ErrTransform)
	}

	prompt := fmt.Sprintf(syntheticOfferingPrompt, requestText)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := t.client.GenerateContent(ctx, content, llms.WithTemperature(0.3))
	if err != nil {
		t.logger.Error("failed to generate synthetic offering", "err", err)
		return "", fmt.Errorf("%w: %v", ai.ErrTransform, err)
	}

	if len(response.Choices) < 1 {
		t.logger.Warn("no choices returned from model")
		return "", fmt.Errorf("%w: empty response", ai.ErrTransform)
	}

	synthetic := stripCodeFence(response.Choices[0].Content)
	synthetic = strings.Trim(synthetic, `"`)
	synthetic = strings.TrimSpace(synthetic)
	if synthetic == "" {
		return "", fmt.Errorf("%w: model returned empty text", ai.ErrTransform)
	}

	t.logger.Debug("generated synthetic offering",
		"request_length", len(requestText),
		"synthetic_length", len(synthetic))
	return synthetic, nil
}
