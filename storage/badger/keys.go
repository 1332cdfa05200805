package badger

import (
	"encoding/binary"

	"github.com/poiesic/confero/core"
)

// Key prefixes for different data types. Prefixes are chosen so that no
// prefix is a prefix of another, which keeps full scans collision-free.
const (
	attendeeRecordPrefix = "attrec"
	offeringRecordPrefix = "offrec"
	offeringOwnerPrefix  = "offidx"
	requestRecordPrefix  = "reqrec"
	requestOwnerPrefix   = "reqidx"

	// Directed precomputed match tables.
	requestMatchPrefix  = "mtchro" // request source -> offering candidates
	offeringMatchPrefix = "mtchor" // offering source -> request candidates
)

// makeRecordKey generates a key for a record by ID.
// The ID is BigEndian so a prefix scan yields records in numeric ID order.
func makeRecordKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	binary.BigEndian.PutUint64(buf[offset+1:], uint64(id))
	return buf
}

// makeOwnerKey generates a composite key for the per-attendee item index.
// Format: prefix:attendeeID:itemID
func makeOwnerKey(prefix string, attendeeId, itemId core.ID) []byte {
	buf := make([]byte, len(prefix)+1+16)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	binary.BigEndian.PutUint64(buf[offset+1:], uint64(attendeeId))
	binary.BigEndian.PutUint64(buf[offset+9:], uint64(itemId))
	return buf
}

// makePartialOwnerKey generates a partial key for scanning one attendee's items.
func makePartialOwnerKey(prefix string, attendeeId core.ID) []byte {
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	binary.BigEndian.PutUint64(buf[offset+1:], uint64(attendeeId))
	return buf
}

// makeMatchKey generates a composite key for one match row.
// Format: prefix:sourceID:rank. BigEndian rank makes a prefix scan return
// rows in ascending rank order.
func makeMatchKey(prefix string, sourceId core.ID, rank int) []byte {
	buf := make([]byte, len(prefix)+1+16)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	binary.BigEndian.PutUint64(buf[offset+1:], uint64(sourceId))
	binary.BigEndian.PutUint64(buf[offset+9:], uint64(rank))
	return buf
}

// makePartialMatchKey generates a partial key for scanning one source's rows.
func makePartialMatchKey(prefix string, sourceId core.ID) []byte {
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	binary.BigEndian.PutUint64(buf[offset+1:], uint64(sourceId))
	return buf
}
