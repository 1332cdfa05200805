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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidAttendee indicates an Attendee failed validation.
	ErrInvalidAttendee = errors.New("invalid attendee")

	// ErrInvalidOffering indicates an Offering failed validation.
	ErrInvalidOffering = errors.New("invalid offering")

	// ErrInvalidRequest indicates a Request failed validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidMatchRecord indicates a MatchRecord failed validation.
	ErrInvalidMatchRecord = errors.New("invalid match record")

	// ErrEmptyText indicates a required text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrBadVector indicates an embedding has the wrong dimension or is not unit length.
	ErrBadVector = errors.New("embedding must be a unit vector of the configured dimension")
)
