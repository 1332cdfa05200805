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


// Package precompute materializes the top-50 match tables offline so the
// identity-lookup path need not run vector search or the transformer online.
//
// A run has four stages, each idempotent over an unchanged dataset:
//
//  1. embedding backfill: items missing a vector get one
//  2. synthetic backfill: requests missing a synthetic offering get one
//  3. request -> offering matching, owner excluded, full-replace rows
//  4. offering -> request matching against the requests' synthetic
//     embeddings, same semantics
//
// Per-item failures are logged and skipped; the run continues and reports
// how many items it could not process.
package precompute

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/confero/ai"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/index"
	"github.com/poiesic/confero/storage"
)

// Config holds configuration for a precompute run.
type Config struct {
	// PoolSize is the number of concurrent workers for AI-bound stages.
	// Default is runtime.NumCPU() / 2, with a minimum of 1.
	PoolSize int

	// ReportInterval is how often to report progress (number of items).
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for AI calls.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// TopK is the number of match rows stored per source item.
	TopK int

	// Dim is the embedding dimension the in-memory indexes expect.
	// Default is core.EmbeddingDim.
	Dim int

	// Resume skips sources that already have match rows, so an interrupted
	// run picks up where it left off instead of redoing finished work.
	Resume bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &Config{
		PoolSize:       poolSize,
		ReportInterval: 25,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		TopK:           core.MaxMatchRank,
		Dim:            core.EmbeddingDim,
	}
}

// Engine runs the precompute batch job.
type Engine struct {
	offerings storage.OfferingRepository
	requests  storage.RequestRepository
	matches   storage.MatchRepository

	embedder    ai.Embedder
	transformer ai.Transformer

	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewEngine creates a new precompute engine.
// progress: where to write progress output (typically os.Stderr)
func NewEngine(
	offerings storage.OfferingRepository,
	requests storage.RequestRepository,
	matches storage.MatchRepository,
	provider ai.Provider,
	config *Config,
	progress io.Writer,
) (*Engine, error) {
	if offerings == nil || requests == nil || matches == nil {
		return nil, ErrRepositoriesRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.TopK <= 0 || config.TopK > core.MaxMatchRank {
		config.TopK = core.MaxMatchRank
	}
	if config.Dim <= 0 {
		config.Dim = core.EmbeddingDim
	}

	return &Engine{
		offerings:   offerings,
		requests:    requests,
		matches:     matches,
		embedder:    provider.Embedder(),
		transformer: provider.Transformer(),
		config:      config,
		progress:    progress,
		logger:      slog.Default().With("component", "precompute"),
	}, nil
}

// Run executes all four stages in order.
func (e *Engine) Run(ctx context.Context) error {
	start := time.Now()

	if err := e.backfillEmbeddings(ctx); err != nil {
		return err
	}
	if err := e.backfillSynthetics(ctx); err != nil {
		return err
	}

	// Indexes are built after the backfill stages so every vector that can
	// exist does. Requests are indexed by synthetic embedding; a request
	// whose synthetic could not be computed falls back to its raw vector.
	offerings, err := e.offerings.ListOfferings(ctx)
	if err != nil {
		return err
	}
	requests, err := e.requests.ListRequests(ctx)
	if err != nil {
		return err
	}

	offeringIndex := index.New(e.config.Dim)
	for _, offering := range offerings {
		if len(offering.Vector) == 0 {
			continue
		}
		if err := offeringIndex.Add(index.Entry{
			AttendeeId: offering.AttendeeId,
			ItemId:     offering.Id,
			Text:       offering.Text,
			Vector:     offering.Vector,
		}); err != nil {
			e.logger.Warn("skipping unindexable offering", "offeringId", offering.Id, "err", err)
		}
	}

	requestIndex := index.New(e.config.Dim)
	for _, request := range requests {
		vector := request.SyntheticVector
		if len(vector) == 0 {
			vector = request.Vector
		}
		if len(vector) == 0 {
			continue
		}
		if err := requestIndex.Add(index.Entry{
			AttendeeId: request.AttendeeId,
			ItemId:     request.Id,
			Text:       request.Text,
			Vector:     vector,
		}); err != nil {
			e.logger.Warn("skipping unindexable request", "requestId", request.Id, "err", err)
		}
	}

	if err := e.matchRequests(ctx, requests, offeringIndex); err != nil {
		return err
	}
	if err := e.matchOfferings(ctx, offerings, requestIndex); err != nil {
		return err
	}

	fmt.Fprintf(e.progress, "Precompute complete: %d offerings, %d requests in %v\n",
		len(offerings), len(requests), time.Since(start).Round(time.Second))
	return nil
}

// backfillEmbeddings embeds items that have text but no vector.
func (e *Engine) backfillEmbeddings(ctx context.Context) error {
	offerings, err := e.offerings.ListOfferings(ctx)
	if err != nil {
		return err
	}
	requests, err := e.requests.ListRequests(ctx)
	if err != nil {
		return err
	}

	type job struct {
		text  string
		store func(vector []float32) error
	}
	var jobs []job
	for _, offering := range offerings {
		if len(offering.Vector) > 0 {
			continue
		}
		id := offering.Id
		jobs = append(jobs, job{text: offering.Text, store: func(v []float32) error {
			return e.offerings.SetOfferingVector(ctx, id, v)
		}})
	}
	for _, request := range requests {
		if len(request.Vector) > 0 {
			continue
		}
		id := request.Id
		jobs = append(jobs, job{text: request.Text, store: func(v []float32) error {
			return e.requests.SetRequestVector(ctx, id, v)
		}})
	}
	if len(jobs) == 0 {
		return nil
	}

	fmt.Fprintf(e.progress, "Backfilling embeddings for %d items\n", len(jobs))
	tracker := NewProgressTracker(e.progress, "embed", len(jobs), e.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(e.config.PoolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	var failed atomic.Int64
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			defer tracker.Increment(1)

			var vector []float32
			err := RetryWithBackoff(ctx, func() error {
				var err error
				vector, err = e.embedder.EmbedText(ctx, j.text)
				return err
			}, e.config.MaxRetries, e.config.RetryDelay)
			if err != nil {
				failed.Add(1)
				e.logger.Warn("embedding backfill failed, skipping item", "err", err)
				return
			}
			if err := j.store(vector); err != nil {
				failed.Add(1)
				e.logger.Warn("failed to store backfilled vector", "err", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
	}
	wg.Wait()
	tracker.Finish()

	if n := failed.Load(); n > 0 {
		e.logger.Warn("embedding backfill finished with failures", "failed", n)
	}
	return ctx.Err()
}

// backfillSynthetics computes synthetic offerings for requests lacking one.
// Requests that already carry a synthetic are skipped, which makes repeated
// runs cheap and idempotent.
func (e *Engine) backfillSynthetics(ctx context.Context) error {
	requests, err := e.requests.ListRequests(ctx)
	if err != nil {
		return err
	}

	var pending []*core.Request
	for _, request := range requests {
		if !request.HasSynthetic() {
			pending = append(pending, request)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	fmt.Fprintf(e.progress, "Generating synthetic offerings for %d requests\n", len(pending))
	tracker := NewProgressTracker(e.progress, "synthetic", len(pending), e.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(e.config.PoolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	var failed atomic.Int64
	var wg sync.WaitGroup
	for _, request := range pending {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			defer tracker.Increment(1)

			var synthetic string
			err := RetryWithBackoff(ctx, func() error {
				var err error
				synthetic, err = e.transformer.ToSyntheticOffering(ctx, request.Text)
				return err
			}, e.config.MaxRetries, e.config.RetryDelay)
			if err != nil {
				failed.Add(1)
				e.logger.Warn("synthetic transform failed, skipping request",
					"requestId", request.Id, "err", err)
				return
			}

			var vector []float32
			err = RetryWithBackoff(ctx, func() error {
				var err error
				vector, err = e.embedder.EmbedText(ctx, synthetic)
				return err
			}, e.config.MaxRetries, e.config.RetryDelay)
			if err != nil {
				failed.Add(1)
				e.logger.Warn("synthetic embedding failed, skipping request",
					"requestId", request.Id, "err", err)
				return
			}

			if err := e.requests.SetSynthetic(ctx, request.Id, synthetic, vector); err != nil {
				failed.Add(1)
				e.logger.Warn("failed to cache synthetic offering",
					"requestId", request.Id, "err", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
	}
	wg.Wait()
	tracker.Finish()

	if n := failed.Load(); n > 0 {
		e.logger.Warn("synthetic backfill finished with failures", "failed", n)
	}
	return ctx.Err()
}

// matchRequests fills the request -> offering table.
func (e *Engine) matchRequests(ctx context.Context, requests []*core.Request, offeringIndex *index.Index) error {
	fmt.Fprintf(e.progress, "Matching %d requests against offerings\n", len(requests))
	tracker := NewProgressTracker(e.progress, "request matches", len(requests), e.config.ReportInterval)
	tracker.Start()

	for _, request := range requests {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.config.Resume {
			rows, err := e.matches.GetRequestMatches(ctx, request.Id)
			if err == nil && len(rows) > 0 {
				tracker.Increment(1)
				continue
			}
		}

		vector := request.SyntheticVector
		if len(vector) == 0 {
			vector = request.Vector
		}
		if len(vector) == 0 {
			e.logger.Warn("request has no usable vector, skipping", "requestId", request.Id)
			tracker.Increment(1)
			continue
		}

		hits, err := offeringIndex.Search(vector, -1, e.config.TopK, request.AttendeeId)
		if err != nil {
			e.logger.Warn("request search failed, skipping", "requestId", request.Id, "err", err)
			tracker.Increment(1)
			continue
		}

		if err := e.matches.ReplaceRequestMatches(ctx, request.Id, rowsFromHits(hits)); err != nil {
			e.logger.Warn("failed to store request matches", "requestId", request.Id, "err", err)
		}
		tracker.Increment(1)
	}
	tracker.Finish()
	return nil
}

// matchOfferings fills the offering -> request table. The request index
// holds synthetic embeddings, so offerings compare against requests in
// offering space.
func (e *Engine) matchOfferings(ctx context.Context, offerings []*core.Offering, requestIndex *index.Index) error {
	fmt.Fprintf(e.progress, "Matching %d offerings against requests\n", len(offerings))
	tracker := NewProgressTracker(e.progress, "offering matches", len(offerings), e.config.ReportInterval)
	tracker.Start()

	for _, offering := range offerings {
		if err := ctx.Err(); err != nil {
			return err
		}

		if e.config.Resume {
			rows, err := e.matches.GetOfferingMatches(ctx, offering.Id)
			if err == nil && len(rows) > 0 {
				tracker.Increment(1)
				continue
			}
		}

		if len(offering.Vector) == 0 {
			e.logger.Warn("offering has no vector, skipping", "offeringId", offering.Id)
			tracker.Increment(1)
			continue
		}

		hits, err := requestIndex.Search(offering.Vector, -1, e.config.TopK, offering.AttendeeId)
		if err != nil {
			e.logger.Warn("offering search failed, skipping", "offeringId", offering.Id, "err", err)
			tracker.Increment(1)
			continue
		}

		if err := e.matches.ReplaceOfferingMatches(ctx, offering.Id, rowsFromHits(hits)); err != nil {
			e.logger.Warn("failed to store offering matches", "offeringId", offering.Id, "err", err)
		}
		tracker.Increment(1)
	}
	tracker.Finish()
	return nil
}

func rowsFromHits(hits []index.Result) []*core.MatchRecord {
	rows := make([]*core.MatchRecord, len(hits))
	for i, hit := range hits {
		rows[i] = &core.MatchRecord{
			CandidateId: hit.Entry.ItemId,
			Similarity:  hit.Score,
			Rank:        i + 1,
		}
	}
	return rows
}
