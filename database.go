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


package confero

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/confero/ai"
	"github.com/poiesic/confero/ai/openai"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/index"
	"github.com/poiesic/confero/match"
	"github.com/poiesic/confero/precompute"
	"github.com/poiesic/confero/storage/badger"
)

// Database bundles the storage backend, the AI provider and the in-memory
// vector indexes behind one handle.
type Database struct {
	repos    *badger.Repositories
	provider ai.Provider

	offeringIndex *index.Index
	requestIndex  *index.Index

	logger *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a ready-made provider instead of building one
// from config. Mainly for tests.
func WithAIProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the whole database in memory.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the store at filePath and builds the AI provider.
// Indexes start empty; call BuildIndexes before serving queries.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	var repos *badger.Repositories
	var err error
	if options.inMemory {
		repos, err = badger.NewMemoryRepositories()
	} else {
		repos, err = badger.NewRepositories(filePath)
	}
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	dim := options.aiConfig.EmbeddingDim
	return &Database{
		repos:         repos,
		provider:      provider,
		offeringIndex: index.New(dim),
		requestIndex:  index.New(dim),
		logger:        slog.Default(),
	}, nil
}

// BuildIndexes loads every stored vector into the in-memory indexes.
// Offerings index by their own embedding. Requests index by their synthetic
// embedding so free-text offerings search in offering space; a request
// without a synthetic falls back to its raw embedding.
func (db *Database) BuildIndexes(ctx context.Context) error {
	offerings, err := db.repos.Offerings.ListOfferings(ctx)
	if err != nil {
		return err
	}
	indexed := 0
	for _, offering := range offerings {
		if len(offering.Vector) == 0 {
			continue
		}
		if err := db.offeringIndex.Add(index.Entry{
			AttendeeId: offering.AttendeeId,
			ItemId:     offering.Id,
			Text:       offering.Text,
			Vector:     offering.Vector,
		}); err != nil {
			db.logger.Warn("skipping unindexable offering", "offeringId", offering.Id, "err", err)
			continue
		}
		indexed++
	}
	db.logger.Info("offering index built", "indexed", indexed, "total", len(offerings))

	requests, err := db.repos.Requests.ListRequests(ctx)
	if err != nil {
		return err
	}
	indexed = 0
	for _, request := range requests {
		vector := request.SyntheticVector
		if len(vector) == 0 {
			vector = request.Vector
		}
		if len(vector) == 0 {
			continue
		}
		if err := db.requestIndex.Add(index.Entry{
			AttendeeId: request.AttendeeId,
			ItemId:     request.Id,
			Text:       request.Text,
			Vector:     vector,
		}); err != nil {
			db.logger.Warn("skipping unindexable request", "requestId", request.Id, "err", err)
			continue
		}
		indexed++
	}
	db.logger.Info("request index built", "indexed", indexed, "total", len(requests))
	return nil
}

// Repositories exposes the storage layer, mainly for loaders and tests.
func (db *Database) Repositories() *badger.Repositories {
	return db.repos
}

// NewMatcher creates a matcher over this database's indexes and provider.
func (db *Database) NewMatcher(opts ...match.Option) (*match.Matcher, error) {
	return match.NewMatcher(
		db.repos.Attendees, db.repos.Offerings, db.repos.Requests, db.repos.Matches,
		db.offeringIndex, db.requestIndex, db.provider, opts...)
}

// NewEngine creates a precompute engine over this database.
func (db *Database) NewEngine(config *precompute.Config, progress io.Writer) (*precompute.Engine, error) {
	return precompute.NewEngine(
		db.repos.Offerings, db.repos.Requests, db.repos.Matches,
		db.provider, config, progress)
}

// PutAttendeeData stores an attendee with their offerings and requests in
// one call. Loaders use this to import extraction snapshots.
func (db *Database) PutAttendeeData(ctx context.Context, attendee *core.Attendee, offerings []*core.Offering, requests []*core.Request) error {
	if err := db.repos.Attendees.PutAttendees(ctx, attendee); err != nil {
		return err
	}
	if len(offerings) > 0 {
		if err := db.repos.Offerings.PutOfferings(ctx, offerings...); err != nil {
			return err
		}
	}
	if len(requests) > 0 {
		if err := db.repos.Requests.PutRequests(ctx, requests...); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}
