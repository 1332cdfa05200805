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


package match

import "errors"

var (
	// ErrAttendeeNotFound is returned when name resolution exhausts all tiers.
	ErrAttendeeNotFound = errors.New("attendee not found")

	// ErrEmptyQuery is returned for blank free-text queries.
	ErrEmptyQuery = errors.New("query text is empty")

	// ErrRepositoriesRequired is returned when a required repository is not provided.
	ErrRepositoriesRequired = errors.New("repositories required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
