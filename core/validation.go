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

import (
	"fmt"
	"strings"
)

// vectorNormTolerance is the allowed deviation from unit length for stored
// embeddings. Upstream services normalize in float64; stored vectors are
// float32, so a loose tolerance is needed.
const vectorNormTolerance = 1e-3

// ValidateAttendee validates an Attendee according to domain rules.
//
// Validation rules:
//   - At least one of FirstName/LastName must be non-empty
//
// NOT validated: company, title, country, links, biography (all optional
// display fields owned by the ingestion pipeline).
func ValidateAttendee(attendee *Attendee) error {
	if attendee == nil {
		return fmt.Errorf("%w: attendee is nil", ErrInvalidAttendee)
	}
	if strings.TrimSpace(attendee.FirstName) == "" && strings.TrimSpace(attendee.LastName) == "" {
		return fmt.Errorf("%w: attendee has no name", ErrInvalidAttendee)
	}
	return nil
}

// ValidateOffering validates an Offering according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Vector, when present, must be a unit vector of EmbeddingDim dimensions
//
// An empty Vector is valid: embeddings are attached by a later stage.
func ValidateOffering(offering *Offering) error {
	if offering == nil {
		return fmt.Errorf("%w: offering is nil", ErrInvalidOffering)
	}
	if strings.TrimSpace(offering.Text) == "" {
		return fmt.Errorf("%w: %v", ErrInvalidOffering, ErrEmptyText)
	}
	if err := validateVector(offering.Vector); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOffering, err)
	}
	return nil
}

// ValidateRequest validates a Request according to domain rules.
// The same vector rules apply to both the request embedding and the derived
// synthetic-offering embedding.
func ValidateRequest(request *Request) error {
	if request == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	if strings.TrimSpace(request.Text) == "" {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, ErrEmptyText)
	}
	if err := validateVector(request.Vector); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := validateVector(request.SyntheticVector); err != nil {
		return fmt.Errorf("%w: synthetic offering: %v", ErrInvalidRequest, err)
	}
	return nil
}

// ValidateMatchRecord validates a precomputed match row.
//
// Validation rules:
//   - Rank must be in [1, MaxMatchRank]
//   - Similarity must be in [-1, 1]
//   - Source and candidate must differ
func ValidateMatchRecord(record *MatchRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidMatchRecord)
	}
	if record.Rank < 1 || record.Rank > MaxMatchRank {
		return fmt.Errorf("%w: rank %d outside [1,%d]", ErrInvalidMatchRecord, record.Rank, MaxMatchRank)
	}
	if record.Similarity < -1 || record.Similarity > 1 {
		return fmt.Errorf("%w: similarity %f outside [-1,1]", ErrInvalidMatchRecord, record.Similarity)
	}
	if record.SourceId == record.CandidateId {
		return fmt.Errorf("%w: source and candidate are the same item", ErrInvalidMatchRecord)
	}
	return nil
}

func validateVector(v []float32) error {
	if len(v) == 0 {
		return nil
	}
	if len(v) != EmbeddingDim {
		return fmt.Errorf("%w: got %d dimensions", ErrBadVector, len(v))
	}
	if !IsUnitVector(v, vectorNormTolerance) {
		return ErrBadVector
	}
	return nil
}
