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


// Package match orchestrates attendee matching.
//
// The Matcher type serves three query modes over one retrieval core:
//
//   - Identity mode: resolve a name to an attendee, then match every one of
//     their requests against others' offerings and every offering against
//     others' requests, preferring precomputed match tables over live search.
//   - Free-text request mode: rewrite the text as a synthetic offering,
//     embed it, and search real offerings.
//   - Free-text offering mode: embed the text directly and search requests
//     by their synthetic-offering embeddings.
//
// All three funnel their top-50 vector-search candidates through a
// generative reranker that selects and orders the best 25. Reranking is a
// quality filter, not a correctness gate: when the model's response is
// unusable the similarity order stands, and a candidate whose attendee
// record cannot be resolved is dropped rather than failing the query.
//
// A Monitor can be attached per call to observe pipeline stages; the
// production path passes nil and pays for nothing.
package match
