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
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/storage"
)

// OfferingRepository implements storage.OfferingRepository for BadgerDB.
type OfferingRepository struct {
	backend *Backend
}

var _ storage.OfferingRepository = (*OfferingRepository)(nil)

// NewOfferingRepository creates a new OfferingRepository.
func NewOfferingRepository(backend *Backend) *OfferingRepository {
	return &OfferingRepository{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (r *OfferingRepository) Close() error {
	return nil
}

// PutOfferings stores one or more offerings, overwriting existing records.
// The per-attendee owner index is updated alongside the record.
func (r *OfferingRepository) PutOfferings(ctx context.Context, offerings ...*core.Offering) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, offering := range offerings {
			value, err := storage.MarshalOffering(offering)
			if err != nil {
				return err
			}
			if err := tx.Set(makeRecordKey(offeringRecordPrefix, offering.Id), value); err != nil {
				return err
			}
			ownerKey := makeOwnerKey(offeringOwnerPrefix, offering.AttendeeId, offering.Id)
			if err := tx.Set(ownerKey, storage.MarshalID(offering.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetOffering retrieves a single offering by ID.
func (r *OfferingRepository) GetOffering(ctx context.Context, id core.ID) (*core.Offering, error) {
	var result *core.Offering
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readOffering(tx, makeRecordKey(offeringRecordPrefix, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetOfferingsByAttendee retrieves all offerings owned by an attendee.
func (r *OfferingRepository) GetOfferingsByAttendee(ctx context.Context, attendeeId core.ID) ([]*core.Offering, error) {
	result := []*core.Offering{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialOwnerKey(offeringOwnerPrefix, attendeeId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			offering, err := readOffering(tx, makeRecordKey(offeringRecordPrefix, id))
			if err != nil {
				return err
			}
			if offering != nil {
				result = append(result, offering)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListOfferings retrieves all offerings, ordered by ID.
func (r *OfferingRepository) ListOfferings(ctx context.Context) ([]*core.Offering, error) {
	var result []*core.Offering
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(offeringRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				offering, err := storage.UnmarshalOffering(val)
				if err != nil {
					return err
				}
				result = append(result, offering)
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

// SetOfferingVector attaches an embedding to a stored offering.
func (r *OfferingRepository) SetOfferingVector(ctx context.Context, id core.ID, vector []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRecordKey(offeringRecordPrefix, id)
		offering, err := readOffering(tx, key)
		if err != nil {
			return err
		}
		if offering == nil {
			return storage.ErrNotFound
		}

		offering.Vector = vector
		value, err := storage.MarshalOffering(offering)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readOffering reads an offering by key within a transaction.
// Returns nil without error when the key doesn't exist.
func readOffering(tx *badger.Txn, key []byte) (*core.Offering, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var offering *core.Offering
	err = item.Value(func(val []byte) error {
		var err error
		offering, err = storage.UnmarshalOffering(val)
		return err
	})
	return offering, err
}
