package confero

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/confero/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSnapshot = `[
  {
    "id": 1,
    "first_name": "Ada",
    "last_name": "Lovelace",
    "company": "Analytical Engines",
    "job_title": "Programmer",
    "country": "UK",
    "offerings": [
      {"text": "mentoring on compilers", "embedding": [1, 0, 0]},
      {"text": "intros to publishers"}
    ],
    "requests": [
      {"text": "looking for hardware collaborators", "embedding": [0, 1, 0]}
    ]
  },
  {
    "id": 2,
    "first_name": "Bob",
    "last_name": "Babbage",
    "offerings": [],
    "requests": [
      {"text": "need funding advice"},
      {"text": ""}
    ]
  }
]`

func newSnapshotDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase("", WithInMemoryStorage(), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSnapshot(t *testing.T) {
	db := newSnapshotDB(t)
	ctx := context.Background()

	stats, err := LoadSnapshot(ctx, db, writeSnapshot(t, testSnapshot))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Attendees)
	assert.Equal(t, 2, stats.Offerings)
	// The empty-text request is skipped.
	assert.Equal(t, 2, stats.Requests)

	attendee, err := db.Repositories().Attendees.GetAttendee(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", attendee.DisplayName())
	assert.Equal(t, "Analytical Engines", attendee.Company)

	offerings, err := db.Repositories().Offerings.GetOfferingsByAttendee(ctx, 1)
	require.NoError(t, err)
	require.Len(t, offerings, 2)

	requests, err := db.Repositories().Requests.GetRequestsByAttendee(ctx, 2)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "need funding advice", requests[0].Text)
	assert.Empty(t, requests[0].Vector, "missing embeddings stay empty until backfill")
}

func TestLoadSnapshot_Idempotent(t *testing.T) {
	db := newSnapshotDB(t)
	ctx := context.Background()
	path := writeSnapshot(t, testSnapshot)

	_, err := LoadSnapshot(ctx, db, path)
	require.NoError(t, err)
	_, err = LoadSnapshot(ctx, db, path)
	require.NoError(t, err)

	offerings, err := db.Repositories().Offerings.ListOfferings(ctx)
	require.NoError(t, err)
	assert.Len(t, offerings, 2, "re-seeding must overwrite, not duplicate")
}

func TestLoadSnapshot_Errors(t *testing.T) {
	db := newSnapshotDB(t)
	ctx := context.Background()

	_, err := LoadSnapshot(ctx, db, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadSnapshot(ctx, db, writeSnapshot(t, "not json"))
	assert.Error(t, err)

	_, err = LoadSnapshot(ctx, db, writeSnapshot(t, `[{"first_name": "No", "last_name": "Id"}]`))
	assert.ErrorContains(t, err, "has no id")
}
