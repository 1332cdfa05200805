package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/storage"
)

// AttendeeRepository implements storage.AttendeeRepository for BadgerDB.
type AttendeeRepository struct {
	backend *Backend
}

var _ storage.AttendeeRepository = (*AttendeeRepository)(nil)

// NewAttendeeRepository creates a new AttendeeRepository.
func NewAttendeeRepository(backend *Backend) *AttendeeRepository {
	return &AttendeeRepository{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (r *AttendeeRepository) Close() error {
	return nil
}

// PutAttendees stores one or more attendees, overwriting existing records.
func (r *AttendeeRepository) PutAttendees(ctx context.Context, attendees ...*core.Attendee) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, attendee := range attendees {
			value, err := storage.MarshalAttendee(attendee)
			if err != nil {
				return err
			}
			if err := tx.Set(makeRecordKey(attendeeRecordPrefix, attendee.Id), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetAttendee retrieves a single attendee by ID.
func (r *AttendeeRepository) GetAttendee(ctx context.Context, id core.ID) (*core.Attendee, error) {
	var result *core.Attendee
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readAttendee(tx, makeRecordKey(attendeeRecordPrefix, id))
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

// ListAttendees retrieves all attendees, ordered by ID.
func (r *AttendeeRepository) ListAttendees(ctx context.Context) ([]*core.Attendee, error) {
	var result []*core.Attendee
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(attendeeRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				attendee, err := storage.UnmarshalAttendee(val)
				if err != nil {
					return err
				}
				result = append(result, attendee)
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

// readAttendee reads an attendee by key within a transaction.
// Returns nil without error when the key doesn't exist.
func readAttendee(tx *badger.Txn, key []byte) (*core.Attendee, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var attendee *core.Attendee
	err = item.Value(func(val []byte) error {
		var err error
		attendee, err = storage.UnmarshalAttendee(val)
		return err
	})
	return attendee, err
}
