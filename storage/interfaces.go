package storage

import (
	"context"

	"github.com/poiesic/confero/core"
)

// AttendeeRepository provides operations for managing attendee profiles.
// Attendee data arrives from the extraction snapshot and is read-mostly.
// Implementations must be thread-safe and support concurrent access.
type AttendeeRepository interface {
	// PutAttendees stores one or more attendees, overwriting existing
	// records with the same ID.
	PutAttendees(ctx context.Context, attendees ...*core.Attendee) error

	// GetAttendee retrieves a single attendee by ID.
	// Returns ErrNotFound if the attendee doesn't exist.
	GetAttendee(ctx context.Context, id core.ID) (*core.Attendee, error)

	// ListAttendees retrieves all attendees, ordered by ID.
	ListAttendees(ctx context.Context) ([]*core.Attendee, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// OfferingRepository provides operations for managing offerings.
type OfferingRepository interface {
	// PutOfferings stores one or more offerings, overwriting existing
	// records with the same ID.
	PutOfferings(ctx context.Context, offerings ...*core.Offering) error

	// GetOffering retrieves a single offering by ID.
	// Returns ErrNotFound if the offering doesn't exist.
	GetOffering(ctx context.Context, id core.ID) (*core.Offering, error)

	// GetOfferingsByAttendee retrieves all offerings owned by an attendee.
	// Returns an empty slice when the attendee has none.
	GetOfferingsByAttendee(ctx context.Context, attendeeId core.ID) ([]*core.Offering, error)

	// ListOfferings retrieves all offerings, ordered by ID.
	ListOfferings(ctx context.Context) ([]*core.Offering, error)

	// SetOfferingVector attaches an embedding to a stored offering.
	// Returns ErrNotFound if the offering doesn't exist.
	SetOfferingVector(ctx context.Context, id core.ID, vector []float32) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// RequestRepository provides operations for managing requests and their
// cached synthetic offerings.
type RequestRepository interface {
	// PutRequests stores one or more requests, overwriting existing
	// records with the same ID.
	PutRequests(ctx context.Context, requests ...*core.Request) error

	// GetRequest retrieves a single request by ID.
	// Returns ErrNotFound if the request doesn't exist.
	GetRequest(ctx context.Context, id core.ID) (*core.Request, error)

	// GetRequestsByAttendee retrieves all requests owned by an attendee.
	// Returns an empty slice when the attendee has none.
	GetRequestsByAttendee(ctx context.Context, attendeeId core.ID) ([]*core.Request, error)

	// ListRequests retrieves all requests, ordered by ID.
	ListRequests(ctx context.Context) ([]*core.Request, error)

	// SetRequestVector attaches an embedding to a stored request.
	// Returns ErrNotFound if the request doesn't exist.
	SetRequestVector(ctx context.Context, id core.ID, vector []float32) error

	// SetSynthetic caches the synthetic offering text and embedding for a
	// request. Returns ErrNotFound if the request doesn't exist.
	SetSynthetic(ctx context.Context, id core.ID, text string, vector []float32) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// MatchRepository provides operations for the precomputed match tables.
// There are two directed tables: request source to offering candidates, and
// offering source to request candidates. A source's rows are only ever
// replaced wholesale, so readers never observe a partially updated ranking.
type MatchRepository interface {
	// ReplaceRequestMatches atomically replaces all match rows for a
	// request source. Rows are stored in rank order, capped at
	// core.MaxMatchRank.
	ReplaceRequestMatches(ctx context.Context, sourceId core.ID, matches []*core.MatchRecord) error

	// ReplaceOfferingMatches atomically replaces all match rows for an
	// offering source. Rows are stored in rank order, capped at
	// core.MaxMatchRank.
	ReplaceOfferingMatches(ctx context.Context, sourceId core.ID, matches []*core.MatchRecord) error

	// GetRequestMatches retrieves the match rows for a request source in
	// ascending rank order. Returns an empty slice when none are stored.
	GetRequestMatches(ctx context.Context, sourceId core.ID) ([]*core.MatchRecord, error)

	// GetOfferingMatches retrieves the match rows for an offering source in
	// ascending rank order. Returns an empty slice when none are stored.
	GetOfferingMatches(ctx context.Context, sourceId core.ID) ([]*core.MatchRecord, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
