package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// EmbeddingDim is the fixed dimensionality of every stored embedding.
// All vectors in the system live in the same 1536-dimension space; a
// synthetic offering embedding is only comparable to real offering
// embeddings because both are produced with this output dimension.
const EmbeddingDim = 1536

// MaxMatchRank is the number of precomputed match rows kept per source item.
const MaxMatchRank = 50

// ID is a unique identifier for domain entities.
// Attendee IDs come from the extraction snapshot; offering and request IDs
// are content-derived so repeated seeding is idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Attendee is a conference attendee as produced by the extraction pipeline.
// Attendees are immutable for the lifetime of an event: the matching core
// reads them but never writes them.
type Attendee struct {
	Id        ID
	FirstName string
	LastName  string
	Company   string
	JobTitle  string
	Country   string
	LinkedIn  string
	Swapcard  string
	Biography string
}

// DisplayName returns the attendee's full display name.
func (a *Attendee) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Offering is something an attendee can provide, with its embedding.
// Created once during extraction; the vector is attached during embedding
// generation and never mutated afterward.
type Offering struct {
	Id         ID
	AttendeeId ID
	Text       string
	Vector     []float32
}

// Request is something an attendee needs. Besides its own embedding it
// carries a derived synthetic offering: the request rewritten in offering
// style, embedded in the same space as real offerings. The synthetic fields
// are the only part of a request that is ever written after creation, and
// they are cached once computed.
type Request struct {
	Id              ID
	AttendeeId      ID
	Text            string
	Vector          []float32
	SyntheticText   string
	SyntheticVector []float32
}

// HasSynthetic reports whether the synthetic offering has been computed.
func (r *Request) HasSynthetic() bool {
	return r.SyntheticText != "" && len(r.SyntheticVector) > 0
}

// MatchRecord is a precomputed directed match edge: source item to candidate
// item in the opposite collection, with the raw similarity and a 1-based
// rank. At most MaxMatchRank rows exist per source.
type MatchRecord struct {
	SourceId    ID
	CandidateId ID
	Similarity  float32
	Rank        int
}
