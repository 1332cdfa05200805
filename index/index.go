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


// Package index provides an in-memory vector index over attendee items.
//
// The index is brute-force: a query is compared against every entry with a
// dot product, which for unit-normalized vectors equals cosine similarity.
// At conference scale (thousands of items, 1536 dimensions) a full scan is
// a few milliseconds and needs no approximate-nearest-neighbor structure.
package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/poiesic/confero/core"
)

// Entry is one searchable item: an offering's text or a request's
// synthetic text, tied back to its attendee.
type Entry struct {
	AttendeeId core.ID
	ItemId     core.ID
	Text       string
	Vector     []float32
}

// Result is a search hit with its similarity score.
type Result struct {
	Entry Entry
	Score float32
}

// Index is a thread-safe in-memory vector index.
// Entries are append-only; rebuilding after a data change means
// constructing a fresh Index.
type Index struct {
	mu      sync.RWMutex
	dim     int
	entries []Entry
}

// New creates an empty index accepting vectors of the given dimensionality.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Add appends an entry to the index.
// Returns core.ErrBadVector if the entry's vector has the wrong size.
func (ix *Index) Add(entry Entry) error {
	if len(entry.Vector) != ix.dim {
		return fmt.Errorf("%w: entry %d has %d dimensions, index expects %d",
			core.ErrBadVector, entry.ItemId, len(entry.Vector), ix.dim)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = append(ix.entries, entry)
	return nil
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Search returns up to limit entries whose similarity to query is strictly
// above minSimilarity, ordered by descending similarity. Equal scores keep
// insertion order. Entries owned by excludeAttendee are skipped; pass
// core.ID(0) to disable owner exclusion.
func (ix *Index) Search(query []float32, minSimilarity float32, limit int, excludeAttendee core.ID) ([]Result, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			core.ErrBadVector, len(query), ix.dim)
	}
	if limit <= 0 {
		return []Result{}, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]Result, 0, limit)
	for _, entry := range ix.entries {
		if excludeAttendee != 0 && entry.AttendeeId == excludeAttendee {
			continue
		}

		score := core.DotProduct(query, entry.Vector)
		if score > minSimilarity {
			results = append(results, Result{Entry: entry, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
