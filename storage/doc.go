// Package storage defines the persistence interfaces for journal entry
// records and owner profiles.
//
// EntryRepository is the durable home of entries: raw input, normalized
// text, and the derived enrichment fields written back by the pipeline in
// a single terminal mutation. ListEntries is the keyword retrieval path
// with filter pushdown and recency ordering. OwnerRepository stores the
// tier and settings a job's capability context is resolved from.
//
// The badger subpackage provides the embedded implementation.
package storage
