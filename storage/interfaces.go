package storage

import (
	"context"
	"time"

	"github.com/LakGar/Lumina-sub000/core"
)

// ListQuery is the filter set pushed down to the entry store for the
// keyword retrieval path. Zero-valued fields are ignored.
type ListQuery struct {
	// Text requires a case-insensitive substring match against the
	// entry's normalized (or raw) text.
	Text string

	// From and To bound the entry creation time: From <= CreatedAt < To.
	From time.Time
	To   time.Time

	// Tags requires every listed tag to be present on the entry.
	Tags []string

	// Mood requires an exact mood label match.
	Mood string

	// Offset and Limit select the page. A Limit of 0 returns no entries
	// (the total is still computed).
	Offset int
	Limit  int
}

// EntryRepository provides operations for managing journal entry records.
// Implementations must be thread-safe and support concurrent access.
type EntryRepository interface {
	// AddEntries adds one or more entry records to storage.
	// Sets CreatedAt/UpdatedAt timestamps if not already set.
	// Returns the records with timestamps populated.
	AddEntries(ctx context.Context, entries ...*core.EntryRecord) ([]*core.EntryRecord, error)

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, entryID string) (*core.EntryRecord, error)

	// GetEntries retrieves multiple entries by their IDs.
	// Returns only the entries that exist (no error for missing entries).
	GetEntries(ctx context.Context, entryIDs ...string) ([]*core.EntryRecord, error)

	// ApplyEnrichment writes the derived fields of one pipeline run to the
	// entry record and refreshes UpdatedAt. This is the pipeline's single
	// terminal mutation; last write wins.
	// Returns ErrNotFound if the entry doesn't exist.
	ApplyEnrichment(ctx context.Context, entryID string, enriched *core.EnrichedEntry) (*core.EntryRecord, error)

	// ListEntries returns one page of the owner's entries matching the
	// query, ordered by creation time descending, along with the total
	// number of matching entries.
	ListEntries(ctx context.Context, ownerID string, query ListQuery) ([]*core.EntryRecord, int, error)

	// AllEntries returns every entry record across all owners, in key
	// order. Used by maintenance jobs such as re-embedding.
	AllEntries(ctx context.Context) ([]*core.EntryRecord, error)

	// DeleteEntries removes entries by their IDs.
	// Returns ErrNotFound if any entry doesn't exist.
	DeleteEntries(ctx context.Context, entryIDs ...string) error

	// Close closes the repository and releases resources.
	Close() error
}

// OwnerRepository provides operations for managing owner profiles, the
// source of each job's capability context.
type OwnerRepository interface {
	// UpsertProfile creates or replaces an owner profile.
	// Refreshes the UpdatedAt timestamp.
	UpsertProfile(ctx context.Context, profile *core.OwnerProfile) (*core.OwnerProfile, error)

	// GetProfile retrieves an owner profile by owner ID.
	// Returns ErrNotFound if no profile exists.
	GetProfile(ctx context.Context, ownerID string) (*core.OwnerProfile, error)

	// Close closes the repository and releases resources.
	Close() error
}
