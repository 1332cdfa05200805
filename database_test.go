package confero

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/confero/ai"
	"github.com/poiesic/confero/ai/mock"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/precompute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngineConfig() *precompute.Config {
	config := precompute.DefaultConfig()
	config.PoolSize = 2
	config.MaxRetries = 1
	config.RetryDelay = time.Millisecond
	config.Dim = 3
	return config
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.Repositories())
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("in-memory storage", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemoryStorage())
		require.NoError(t, err)
		require.NotNil(t, db)
		assert.NoError(t, db.Close())
	})
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", WithInMemoryStorage())
	require.NoError(t, err)
	defer db.Close()

	t.Run("can create matcher", func(t *testing.T) {
		matcher, err := db.NewMatcher()
		require.NoError(t, err)
		require.NotNil(t, matcher)
	})

	t.Run("can create engine", func(t *testing.T) {
		engine, err := db.NewEngine(nil, io.Discard)
		require.NoError(t, err)
		require.NotNil(t, engine)
	})
}

// TestDatabase_EndToEnd exercises the full flow: load data, precompute,
// rebuild indexes, then answer an identity query from the stored tables.
func TestDatabase_EndToEnd(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(
		embedder, mock.NewMockTransformer(), mock.NewMockReranker())

	db, err := NewDatabase("",
		WithInMemoryStorage(),
		WithAIProvider(provider),
		WithAIConfig(ai.NewConfig(ai.WithEmbeddingDim(3))),
	)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.PutAttendeeData(ctx,
		&core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"},
		[]*core.Offering{{Id: 10, AttendeeId: 1, Text: "compiler mentoring", Vector: []float32{1, 0, 0}}},
		nil,
	))
	require.NoError(t, db.PutAttendeeData(ctx,
		&core.Attendee{Id: 2, FirstName: "Bob", LastName: "Babbage"},
		nil,
		[]*core.Request{{Id: 20, AttendeeId: 2, Text: "need compiler help", Vector: []float32{1, 0, 0}}},
	))

	engineConfig := testEngineConfig()
	engine, err := db.NewEngine(engineConfig, io.Discard)
	require.NoError(t, err)
	require.NoError(t, engine.Run(ctx))

	require.NoError(t, db.BuildIndexes(ctx))

	matcher, err := db.NewMatcher()
	require.NoError(t, err)

	result, err := matcher.MatchByName(ctx, "Bob Babbage")
	require.NoError(t, err)
	require.Len(t, result.PeopleWhoCanHelpYou, 1)
	require.Len(t, result.PeopleWhoCanHelpYou[0].Matches, 1)
	assert.Equal(t, "Ada Lovelace", result.PeopleWhoCanHelpYou[0].Matches[0].Name)

	// The identity path must have been served by the precomputed table,
	// not a live embed of Bob's request.
	rows, err := db.Repositories().Matches.GetRequestMatches(ctx, 20)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, core.ID(10), rows[0].CandidateId)
}
