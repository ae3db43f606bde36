package vector

import (
	"context"
	"fmt"
)

// KindJournalChunk is the record kind the enrichment pipeline writes for
// embedded entry chunks.
const KindJournalChunk = "journal_chunk"

// Metadata is the payload attached to every record in the index.
type Metadata struct {
	OwnerID    string `json:"ownerId"`
	EntryID    string `json:"entryId"`
	ChunkIndex int    `json:"chunkIndex"`
	Text       string `json:"text"`
	Kind       string `json:"kind"`
}

// Record is a single embedded chunk stored in the index. Upserting a
// record whose ID already exists overwrites the previous one.
type Record struct {
	ID       string    `json:"id"`
	Vector   []float32 `json:"vector"`
	Metadata Metadata  `json:"metadata"`
}

// Match is a query hit: a record ID, its similarity score, and the stored
// metadata.
type Match struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Filter restricts a query to records of a given kind. The zero value
// matches everything.
type Filter struct {
	Kind string
}

// Index is an owner-namespaced vector index. A namespace is a per-owner
// partition: queries and deletes never cross namespaces, so one user's
// chunks can never surface in another user's results.
//
// Implementations must be thread-safe and support concurrent access.
type Index interface {
	// Upsert writes records into the namespace, overwriting records with
	// identical IDs. The write is atomic: either every record lands or
	// none do.
	Upsert(ctx context.Context, namespace string, records []Record) error

	// Query returns up to topK records from the namespace most similar to
	// the vector, ordered by descending score, restricted by the filter.
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]Match, error)

	// DeletePrefix removes every record in the namespace whose ID starts
	// with prefix. Returns the number of records removed.
	DeletePrefix(ctx context.Context, namespace, prefix string) (int, error)

	// Close closes the index and releases resources.
	Close() error
}

// RecordID builds the stable record ID for a chunk. Re-processing the same
// entry produces identical IDs, so upserts overwrite rather than duplicate.
func RecordID(ownerID, entryID string, chunkIndex int) string {
	return fmt.Sprintf("%s:%s:%d", ownerID, entryID, chunkIndex)
}

// EntryPrefix builds the ID prefix shared by all chunks of one entry,
// used to clear an entry's records before re-upserting.
func EntryPrefix(ownerID, entryID string) string {
	return fmt.Sprintf("%s:%s:", ownerID, entryID)
}
