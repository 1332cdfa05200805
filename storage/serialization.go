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


package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/poiesic/confero/core"
)

// Stored values are JSON. Vectors dominate the payload either way, and JSON
// keeps the database inspectable with standard tooling.

// MarshalID serializes an ID to 8 big-endian bytes.
// Big-endian so that IDs used inside composite keys sort numerically.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: ID needs 8 bytes, got %d", ErrSerializationFailed, len(data))
	}
	return core.ID(binary.BigEndian.Uint64(data)), nil
}

// MarshalAttendee serializes an Attendee to bytes.
func MarshalAttendee(attendee *core.Attendee) ([]byte, error) {
	return marshalJSON(attendee)
}

// UnmarshalAttendee deserializes an Attendee from bytes.
func UnmarshalAttendee(data []byte) (*core.Attendee, error) {
	attendee := &core.Attendee{}
	return attendee, unmarshalJSON(data, attendee)
}

// MarshalOffering serializes an Offering to bytes.
func MarshalOffering(offering *core.Offering) ([]byte, error) {
	return marshalJSON(offering)
}

// UnmarshalOffering deserializes an Offering from bytes.
func UnmarshalOffering(data []byte) (*core.Offering, error) {
	offering := &core.Offering{}
	return offering, unmarshalJSON(data, offering)
}

// MarshalRequest serializes a Request to bytes.
func MarshalRequest(request *core.Request) ([]byte, error) {
	return marshalJSON(request)
}

// UnmarshalRequest deserializes a Request from bytes.
func UnmarshalRequest(data []byte) (*core.Request, error) {
	request := &core.Request{}
	return request, unmarshalJSON(data, request)
}

// MarshalMatchRecord serializes a MatchRecord to bytes.
func MarshalMatchRecord(record *core.MatchRecord) ([]byte, error) {
	return marshalJSON(record)
}

// UnmarshalMatchRecord deserializes a MatchRecord from bytes.
func UnmarshalMatchRecord(data []byte) (*core.MatchRecord, error) {
	record := &core.MatchRecord{}
	return record, unmarshalJSON(data, record)
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

func unmarshalJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return nil
}
