package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func unitVec() []float32 {
	v := make([]float32, EmbeddingDim)
	v[0] = 1
	return v
}

func TestValidateAttendee(t *testing.T) {
	tests := []struct {
		name     string
		attendee *Attendee
		wantErr  error
	}{
		{
			name:     "valid attendee",
			attendee: &Attendee{Id: 1, FirstName: "John", LastName: "Smith"},
		},
		{
			name:     "first name only",
			attendee: &Attendee{Id: 2, FirstName: "Cher"},
		},
		{
			name:     "no name",
			attendee: &Attendee{Id: 3, Company: "Acme"},
			wantErr:  ErrInvalidAttendee,
		},
		{
			name:    "nil attendee",
			wantErr: ErrInvalidAttendee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAttendee(tt.attendee)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOffering(t *testing.T) {
	tests := []struct {
		name     string
		offering *Offering
		wantErr  error
	}{
		{
			name:     "valid without vector",
			offering: &Offering{Id: 1, AttendeeId: 1, Text: "ML engineering expertise"},
		},
		{
			name:     "valid with unit vector",
			offering: &Offering{Id: 1, AttendeeId: 1, Text: "ML engineering expertise", Vector: unitVec()},
		},
		{
			name:     "empty text",
			offering: &Offering{Id: 1, AttendeeId: 1, Text: "   "},
			wantErr:  ErrInvalidOffering,
		},
		{
			name:     "wrong dimension",
			offering: &Offering{Id: 1, AttendeeId: 1, Text: "x", Vector: []float32{1, 0}},
			wantErr:  ErrInvalidOffering,
		},
		{
			name: "not unit length",
			offering: func() *Offering {
				v := make([]float32, EmbeddingDim)
				v[0] = 2
				return &Offering{Id: 1, AttendeeId: 1, Text: "x", Vector: v}
			}(),
			wantErr: ErrInvalidOffering,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOffering(tt.offering)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid with synthetic", func(t *testing.T) {
		r := &Request{
			Id: 1, AttendeeId: 1, Text: "seeking mentorship",
			Vector:          unitVec(),
			SyntheticText:   "I can mentor",
			SyntheticVector: unitVec(),
		}
		assert.NoError(t, ValidateRequest(r))
	})

	t.Run("bad synthetic vector", func(t *testing.T) {
		r := &Request{
			Id: 1, AttendeeId: 1, Text: "seeking mentorship",
			SyntheticVector: []float32{1},
		}
		assert.ErrorIs(t, ValidateRequest(r), ErrInvalidRequest)
	})

	t.Run("empty text", func(t *testing.T) {
		assert.ErrorIs(t, ValidateRequest(&Request{Id: 1}), ErrInvalidRequest)
	})
}

func TestValidateMatchRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *MatchRecord
		wantErr bool
	}{
		{name: "valid", record: &MatchRecord{SourceId: 1, CandidateId: 2, Similarity: 0.8, Rank: 1}},
		{name: "max rank", record: &MatchRecord{SourceId: 1, CandidateId: 2, Similarity: 0.1, Rank: MaxMatchRank}},
		{name: "rank zero", record: &MatchRecord{SourceId: 1, CandidateId: 2, Similarity: 0.8, Rank: 0}, wantErr: true},
		{name: "rank too high", record: &MatchRecord{SourceId: 1, CandidateId: 2, Similarity: 0.8, Rank: MaxMatchRank + 1}, wantErr: true},
		{name: "similarity out of range", record: &MatchRecord{SourceId: 1, CandidateId: 2, Similarity: 1.5, Rank: 1}, wantErr: true},
		{name: "self match", record: &MatchRecord{SourceId: 1, CandidateId: 1, Similarity: 0.8, Rank: 1}, wantErr: true},
		{name: "nil", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMatchRecord(tt.record)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMatchRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
