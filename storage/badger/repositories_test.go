package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/storage"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestAttendeeBasics(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	attendee := &core.Attendee{
		Id:        42,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Company:   "Analytical Engines Ltd",
	}

	if err := repos.Attendees.PutAttendees(ctx, attendee); err != nil {
		t.Fatalf("Failed to put attendee: %v", err)
	}

	retrieved, err := repos.Attendees.GetAttendee(ctx, 42)
	if err != nil {
		t.Fatalf("Failed to get attendee: %v", err)
	}
	if retrieved.DisplayName() != "Ada Lovelace" {
		t.Fatalf("Expected 'Ada Lovelace', got '%s'", retrieved.DisplayName())
	}

	_, err = repos.Attendees.GetAttendee(ctx, 999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestListAttendees_OrderedByID(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	err := repos.Attendees.PutAttendees(ctx,
		&core.Attendee{Id: 300, FirstName: "Charlie"},
		&core.Attendee{Id: 100, FirstName: "Alice"},
		&core.Attendee{Id: 200, FirstName: "Bob"},
	)
	if err != nil {
		t.Fatalf("Failed to put attendees: %v", err)
	}

	attendees, err := repos.Attendees.ListAttendees(ctx)
	if err != nil {
		t.Fatalf("Failed to list attendees: %v", err)
	}
	if len(attendees) != 3 {
		t.Fatalf("Expected 3 attendees, got %d", len(attendees))
	}
	for i, want := range []core.ID{100, 200, 300} {
		if attendees[i].Id != want {
			t.Fatalf("Position %d: expected ID %d, got %d", i, want, attendees[i].Id)
		}
	}
}

func TestOfferingsByAttendee(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	err := repos.Offerings.PutOfferings(ctx,
		&core.Offering{Id: 1, AttendeeId: 10, Text: "mentoring"},
		&core.Offering{Id: 2, AttendeeId: 20, Text: "hiring advice"},
		&core.Offering{Id: 3, AttendeeId: 10, Text: "intro to funders"},
	)
	if err != nil {
		t.Fatalf("Failed to put offerings: %v", err)
	}

	offerings, err := repos.Offerings.GetOfferingsByAttendee(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get offerings by attendee: %v", err)
	}
	if len(offerings) != 2 {
		t.Fatalf("Expected 2 offerings, got %d", len(offerings))
	}

	offerings, err = repos.Offerings.GetOfferingsByAttendee(ctx, 999)
	if err != nil {
		t.Fatalf("Unexpected error for unknown attendee: %v", err)
	}
	if len(offerings) != 0 {
		t.Fatalf("Expected no offerings, got %d", len(offerings))
	}
}

func TestSetOfferingVector(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	offering := &core.Offering{Id: 5, AttendeeId: 1, Text: "code review"}
	if err := repos.Offerings.PutOfferings(ctx, offering); err != nil {
		t.Fatalf("Failed to put offering: %v", err)
	}

	if err := repos.Offerings.SetOfferingVector(ctx, 5, []float32{0.6, 0.8}); err != nil {
		t.Fatalf("Failed to set vector: %v", err)
	}

	retrieved, err := repos.Offerings.GetOffering(ctx, 5)
	if err != nil {
		t.Fatalf("Failed to get offering: %v", err)
	}
	if len(retrieved.Vector) != 2 {
		t.Fatalf("Expected vector of length 2, got %d", len(retrieved.Vector))
	}

	err = repos.Offerings.SetOfferingVector(ctx, 999, []float32{1})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestRequestSynthetic(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	request := &core.Request{Id: 7, AttendeeId: 3, Text: "need a mentor"}
	if err := repos.Requests.PutRequests(ctx, request); err != nil {
		t.Fatalf("Failed to put request: %v", err)
	}

	retrieved, err := repos.Requests.GetRequest(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to get request: %v", err)
	}
	if retrieved.HasSynthetic() {
		t.Fatal("Expected no synthetic offering yet")
	}

	err = repos.Requests.SetSynthetic(ctx, 7, "Happy to mentor", []float32{0.8, 0.6})
	if err != nil {
		t.Fatalf("Failed to set synthetic: %v", err)
	}

	retrieved, err = repos.Requests.GetRequest(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to get request: %v", err)
	}
	if !retrieved.HasSynthetic() {
		t.Fatal("Expected synthetic offering to be cached")
	}
	if retrieved.SyntheticText != "Happy to mentor" {
		t.Fatalf("Unexpected synthetic text: %s", retrieved.SyntheticText)
	}
	if retrieved.Text != "need a mentor" {
		t.Fatal("Original text must survive synthetic update")
	}
}

func TestMatchReplaceAndGet(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	matches := []*core.MatchRecord{
		{CandidateId: 20, Similarity: 0.9},
		{CandidateId: 30, Similarity: 0.8},
		{CandidateId: 40, Similarity: 0.7},
	}
	if err := repos.Matches.ReplaceRequestMatches(ctx, 1, matches); err != nil {
		t.Fatalf("Failed to replace matches: %v", err)
	}

	rows, err := repos.Matches.GetRequestMatches(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get matches: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Rank != i+1 {
			t.Fatalf("Row %d: expected rank %d, got %d", i, i+1, row.Rank)
		}
		if row.SourceId != 1 {
			t.Fatalf("Row %d: expected source 1, got %d", i, row.SourceId)
		}
	}
	if rows[0].CandidateId != 20 {
		t.Fatalf("Expected best candidate 20, got %d", rows[0].CandidateId)
	}

	// Replacing with a shorter list removes the old tail.
	err = repos.Matches.ReplaceRequestMatches(ctx, 1, matches[:1])
	if err != nil {
		t.Fatalf("Failed to replace matches: %v", err)
	}
	rows, err = repos.Matches.GetRequestMatches(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get matches: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row after replacement, got %d", len(rows))
	}
}

func TestMatchTablesAreIndependent(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	err := repos.Matches.ReplaceRequestMatches(ctx, 1, []*core.MatchRecord{{CandidateId: 2, Similarity: 0.5}})
	if err != nil {
		t.Fatalf("Failed to replace request matches: %v", err)
	}

	rows, err := repos.Matches.GetOfferingMatches(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get offering matches: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("Expected empty offering table, got %d rows", len(rows))
	}
}

func TestMatchReplaceCapsAtMaxRank(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	matches := make([]*core.MatchRecord, core.MaxMatchRank+10)
	for i := range matches {
		matches[i] = &core.MatchRecord{CandidateId: core.ID(i + 100), Similarity: 0.5}
	}

	if err := repos.Matches.ReplaceOfferingMatches(ctx, 9, matches); err != nil {
		t.Fatalf("Failed to replace matches: %v", err)
	}

	rows, err := repos.Matches.GetOfferingMatches(ctx, 9)
	if err != nil {
		t.Fatalf("Failed to get matches: %v", err)
	}
	if len(rows) != core.MaxMatchRank {
		t.Fatalf("Expected %d rows, got %d", core.MaxMatchRank, len(rows))
	}
}
