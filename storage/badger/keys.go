package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	entryRecordPrefix    = "entrec"
	entryOwnerDatePrefix = "entrecd"
	ownerProfilePrefix   = "ownrec"
)

// makeEntryKey generates a key for an entry record by ID.
func makeEntryKey(entryID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", entryRecordPrefix, entryID))
}

// makeOwnerKey generates a key for an owner profile by owner ID.
func makeOwnerKey(ownerID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", ownerProfilePrefix, ownerID))
}

// makeEntryDateKey generates a composite key for the per-owner recency index.
// Format: prefix:ownerID:timestamp:entryID
func makeEntryDateKey(ownerID string, timestamp time.Time, entryID string) []byte {
	prefix := makeOwnerDatePrefix(ownerID)
	totalSize := len(prefix) + 8 + len(entryID) // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], []byte(entryID))
	return buf
}

// makePartialEntryDateKey generates a partial key for recency seeks.
// Format: prefix:ownerID:timestamp
func makePartialEntryDateKey(ownerID string, timestamp time.Time) []byte {
	prefix := makeOwnerDatePrefix(ownerID)
	totalSize := len(prefix) + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeOwnerDatePrefix generates the recency index prefix for one owner.
func makeOwnerDatePrefix(ownerID string) []byte {
	return []byte(entryOwnerDatePrefix + ":" + ownerID + ":")
}
