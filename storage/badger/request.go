package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/storage"
)

// RequestRepository implements storage.RequestRepository for BadgerDB.
type RequestRepository struct {
	backend *Backend
}

var _ storage.RequestRepository = (*RequestRepository)(nil)

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(backend *Backend) *RequestRepository {
	return &RequestRepository{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (r *RequestRepository) Close() error {
	return nil
}

// PutRequests stores one or more requests, overwriting existing records.
// The per-attendee owner index is updated alongside the record.
func (r *RequestRepository) PutRequests(ctx context.Context, requests ...*core.Request) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, request := range requests {
			value, err := storage.MarshalRequest(request)
			if err != nil {
				return err
			}
			if err := tx.Set(makeRecordKey(requestRecordPrefix, request.Id), value); err != nil {
				return err
			}
			ownerKey := makeOwnerKey(requestOwnerPrefix, request.AttendeeId, request.Id)
			if err := tx.Set(ownerKey, storage.MarshalID(request.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRequest retrieves a single request by ID.
func (r *RequestRepository) GetRequest(ctx context.Context, id core.ID) (*core.Request, error) {
	var result *core.Request
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readRequest(tx, makeRecordKey(requestRecordPrefix, id))
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

// GetRequestsByAttendee retrieves all requests owned by an attendee.
func (r *RequestRepository) GetRequestsByAttendee(ctx context.Context, attendeeId core.ID) ([]*core.Request, error) {
	result := []*core.Request{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialOwnerKey(requestOwnerPrefix, attendeeId)
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

			request, err := readRequest(tx, makeRecordKey(requestRecordPrefix, id))
			if err != nil {
				return err
			}
			if request != nil {
				result = append(result, request)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListRequests retrieves all requests, ordered by ID.
func (r *RequestRepository) ListRequests(ctx context.Context) ([]*core.Request, error) {
	var result []*core.Request
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(requestRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				request, err := storage.UnmarshalRequest(val)
				if err != nil {
					return err
				}
				result = append(result, request)
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

// SetRequestVector attaches an embedding to a stored request.
func (r *RequestRepository) SetRequestVector(ctx context.Context, id core.ID, vector []float32) error {
	return r.updateRequest(id, func(request *core.Request) {
		request.Vector = vector
	})
}

// SetSynthetic caches the synthetic offering text and embedding for a request.
func (r *RequestRepository) SetSynthetic(ctx context.Context, id core.ID, text string, vector []float32) error {
	return r.updateRequest(id, func(request *core.Request) {
		request.SyntheticText = text
		request.SyntheticVector = vector
	})
}

// updateRequest applies a mutation to a stored request in one transaction.
func (r *RequestRepository) updateRequest(id core.ID, mutate func(*core.Request)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRecordKey(requestRecordPrefix, id)
		request, err := readRequest(tx, key)
		if err != nil {
			return err
		}
		if request == nil {
			return storage.ErrNotFound
		}

		mutate(request)
		value, err := storage.MarshalRequest(request)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readRequest reads a request by key within a transaction.
// Returns nil without error when the key doesn't exist.
func readRequest(tx *badger.Txn, key []byte) (*core.Request, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var request *core.Request
	err = item.Value(func(val []byte) error {
		var err error
		request, err = storage.UnmarshalRequest(val)
		return err
	})
	return request, err
}
