package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/storage"
)

// EntryStore implements storage.EntryRepository for BadgerDB.
type EntryStore struct {
	backend *Backend
}

var _ storage.EntryRepository = (*EntryStore)(nil)

// NewEntryStore creates a new EntryStore on the given backend.
func NewEntryStore(backend *Backend) *EntryStore {
	return &EntryStore{backend: backend}
}

// Close is a no-op; the backend owns the database lifecycle.
func (s *EntryStore) Close() error {
	return nil
}

// AddEntries adds one or more entry records to storage. Re-adding an
// existing entry replaces it; the recency index is repaired if the
// creation time changed.
func (s *EntryStore) AddEntries(ctx context.Context, entries ...*core.EntryRecord) ([]*core.EntryRecord, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, record := range entries {
			if record == nil {
				return storage.ErrNilRecord
			}
			if record.EntryID == "" || record.OwnerID == "" {
				return storage.ErrEmptyID
			}

			if record.CreatedAt.IsZero() {
				record.CreatedAt = now
			}
			record.UpdatedAt = now

			key := makeEntryKey(record.EntryID)

			// Drop the stale index key if the record is being replaced
			// with a different creation time.
			old, err := s.readEntry(tx, key)
			if err != nil {
				return err
			}
			if old != nil && !old.CreatedAt.Equal(record.CreatedAt) {
				oldDateKey := makeEntryDateKey(old.OwnerID, old.CreatedAt, old.EntryID)
				if err := tx.Delete(oldDateKey); err != nil {
					return err
				}
			}

			value, err := storage.MarshalEntryRecord(record)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}

			dateKey := makeEntryDateKey(record.OwnerID, record.CreatedAt, record.EntryID)
			if err := tx.Set(dateKey, []byte(record.EntryID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// GetEntry retrieves a single entry record by ID.
func (s *EntryStore) GetEntry(ctx context.Context, entryID string) (*core.EntryRecord, error) {
	var result *core.EntryRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = s.readEntry(tx, makeEntryKey(entryID))
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

// GetEntries retrieves multiple entry records by their IDs.
// Missing entries are skipped.
func (s *EntryStore) GetEntries(ctx context.Context, entryIDs ...string) ([]*core.EntryRecord, error) {
	var result []*core.EntryRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range entryIDs {
			record, err := s.readEntry(tx, makeEntryKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// ApplyEnrichment writes the derived fields of one pipeline run to the
// entry record in a single mutation. Last write wins.
func (s *EntryStore) ApplyEnrichment(ctx context.Context, entryID string, enriched *core.EnrichedEntry) (*core.EntryRecord, error) {
	if enriched == nil {
		return nil, storage.ErrNilRecord
	}

	var result *core.EntryRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntryKey(entryID)
		record, err := s.readEntry(tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		record.NormalizedText = enriched.NormalizedText
		record.Summary = enriched.Summary
		record.Tags = enriched.Tags
		record.Mood = enriched.Mood
		record.ChunkTexts = enriched.ChunkTexts
		record.UpdatedAt = time.Now().UTC()

		value, err := storage.MarshalEntryRecord(record)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}

		result = record
		return tx.Commit()
	}, true)

	return result, err
}

// ListEntries returns one page of the owner's entries matching the query,
// newest first, along with the count of all matching entries.
func (s *EntryStore) ListEntries(ctx context.Context, ownerID string, query storage.ListQuery) ([]*core.EntryRecord, int, error) {
	if ownerID == "" {
		return nil, 0, storage.ErrEmptyID
	}

	var (
		results []*core.EntryRecord
		total   int
	)
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		// Walk the per-owner recency index in reverse so entries come
		// out newest first.
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialEntryDateKey(ownerID, time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := makeOwnerDatePrefix(ownerID)

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var entryID string
			if err := iter.Item().Value(func(val []byte) error {
				entryID = string(val)
				return nil
			}); err != nil {
				return err
			}

			record, err := s.readEntry(tx, makeEntryKey(entryID))
			if err != nil {
				return err
			}
			if record == nil || !matchesQuery(record, query) {
				continue
			}

			total++
			if total > query.Offset && len(results) < query.Limit {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// AllEntries returns every entry record across all owners, in key order.
func (s *EntryStore) AllEntries(ctx context.Context) ([]*core.EntryRecord, error) {
	var results []*core.EntryRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EntryRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEntryRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteEntries removes entry records by their IDs.
func (s *EntryStore) DeleteEntries(ctx context.Context, entryIDs ...string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range entryIDs {
			key := makeEntryKey(id)
			record, err := s.readEntry(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			dateKey := makeEntryDateKey(record.OwnerID, record.CreatedAt, record.EntryID)
			if err := tx.Delete(dateKey); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readEntry reads and decodes an entry record within a transaction.
// Returns nil without error if the key does not exist.
func (s *EntryStore) readEntry(tx *badger.Txn, key []byte) (*core.EntryRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.EntryRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalEntryRecord(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// matchesQuery applies the filter set to one record.
func matchesQuery(record *core.EntryRecord, query storage.ListQuery) bool {
	if query.Text != "" {
		text := record.NormalizedText
		if text == "" {
			text = record.RawText
		}
		if !strings.Contains(strings.ToLower(text), strings.ToLower(query.Text)) {
			return false
		}
	}
	if !query.From.IsZero() && record.CreatedAt.Before(query.From) {
		return false
	}
	if !query.To.IsZero() && !record.CreatedAt.Before(query.To) {
		return false
	}
	for _, tag := range query.Tags {
		if !slices.Contains(record.Tags, tag) {
			return false
		}
	}
	if query.Mood != "" {
		if record.Mood == nil || *record.Mood != query.Mood {
			return false
		}
	}
	return true
}
