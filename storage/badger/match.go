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


package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/storage"
)

// MatchRepository implements storage.MatchRepository for BadgerDB.
// Each directed table keys rows by sourceID:rank, so a prefix scan
// returns a source's rows already in rank order.
type MatchRepository struct {
	backend *Backend
}

var _ storage.MatchRepository = (*MatchRepository)(nil)

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(backend *Backend) *MatchRepository {
	return &MatchRepository{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (r *MatchRepository) Close() error {
	return nil
}

// ReplaceRequestMatches atomically replaces all rows for a request source.
func (r *MatchRepository) ReplaceRequestMatches(ctx context.Context, sourceId core.ID, matches []*core.MatchRecord) error {
	return r.replaceMatches(requestMatchPrefix, sourceId, matches)
}

// ReplaceOfferingMatches atomically replaces all rows for an offering source.
func (r *MatchRepository) ReplaceOfferingMatches(ctx context.Context, sourceId core.ID, matches []*core.MatchRecord) error {
	return r.replaceMatches(offeringMatchPrefix, sourceId, matches)
}

// GetRequestMatches retrieves the rows for a request source in rank order.
func (r *MatchRepository) GetRequestMatches(ctx context.Context, sourceId core.ID) ([]*core.MatchRecord, error) {
	return r.getMatches(requestMatchPrefix, sourceId)
}

// GetOfferingMatches retrieves the rows for an offering source in rank order.
func (r *MatchRepository) GetOfferingMatches(ctx context.Context, sourceId core.ID) ([]*core.MatchRecord, error) {
	return r.getMatches(offeringMatchPrefix, sourceId)
}

// replaceMatches deletes a source's existing rows and writes the new set in
// a single transaction, so readers see either the old ranking or the new
// one, never a mix. Input beyond core.MaxMatchRank is dropped.
func (r *MatchRepository) replaceMatches(prefix string, sourceId core.ID, matches []*core.MatchRecord) error {
	if len(matches) > core.MaxMatchRank {
		matches = matches[:core.MaxMatchRank]
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect stale keys first; deleting while iterating is undefined.
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialMatchKey(prefix, sourceId)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stale = append(stale, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		for i, match := range matches {
			record := *match
			record.SourceId = sourceId
			record.Rank = i + 1
			value, err := storage.MarshalMatchRecord(&record)
			if err != nil {
				return err
			}
			if err := tx.Set(makeMatchKey(prefix, sourceId, record.Rank), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// getMatches scans one source's rows. Rank order falls out of the key layout.
func (r *MatchRepository) getMatches(prefix string, sourceId core.ID) ([]*core.MatchRecord, error) {
	result := []*core.MatchRecord{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialMatchKey(prefix, sourceId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalMatchRecord(val)
				if err != nil {
					return err
				}
				result = append(result, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return result, err
}
