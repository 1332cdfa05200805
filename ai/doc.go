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


// Package ai provides abstractions for the AI services used in Confero.
//
// This package defines interfaces for text embeddings, request-to-offering
// transformation, and generative reranking. It follows the dependency
// inversion principle, allowing the matching core to depend on abstractions
// rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around four key interfaces:
//
//   - Embedder: generates unit-normalized vector embeddings from text
//   - Transformer: rewrites a request as a synthetic offering
//   - Reranker: selects and orders the best candidates for a query
//   - Provider: aggregates the services for convenient initialization
//
// The transformer and the reranker are both backed by the same generative
// service; only the prompt content and the expected output shape differ.
// Prompt text is treated as versioned configuration, not logic: the prompt
// constants in ai/openai carry the behavioral contract, and the surrounding
// engine does not change when they are tuned.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test utility constructors (mock.NewMockEmbedder and friends) return
// CONCRETE types to enable test assertions and behavior injection via the
// mock's public fields (CallCount, the ...Func fields, Reset).
package ai
