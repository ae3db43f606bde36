package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/LakGar/Lumina-sub000/vector"
	"github.com/dgraph-io/badger/v4"
)

// Index implements vector.Index on BadgerDB. Records live under
// namespace-prefixed keys; similarity queries do a brute-force scan of the
// owner's namespace, which is plenty for per-user journal volumes.
type Index struct {
	db     *badger.DB
	owned  bool
	logger *slog.Logger
}

var _ vector.Index = (*Index)(nil)

// NewIndex creates an Index on an already-open BadgerDB instance.
// The caller keeps ownership of the database; Close will not close it.
func NewIndex(db *badger.DB) *Index {
	return &Index{
		db:     db,
		logger: slog.Default().With("component", "vector-index"),
	}
}

// OpenIndex opens a BadgerDB database at the given path and builds an
// Index that owns it. Pass inMemory=true for an ephemeral index.
func OpenIndex(filePath string, inMemory bool) (*Index, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filePath)
	}
	opts.Logger = newLoggerAdapter(slog.Default())

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Index{
		db:     db,
		owned:  true,
		logger: slog.Default().With("component", "vector-index"),
	}, nil
}

// Close closes the underlying database if this index owns it.
func (ix *Index) Close() error {
	if !ix.owned {
		return nil
	}
	return ix.db.Close()
}

// Upsert writes records into the namespace in a single transaction.
// Records with identical IDs overwrite previous versions.
func (ix *Index) Upsert(ctx context.Context, namespace string, records []vector.Record) error {
	if namespace == "" {
		return vector.ErrEmptyNamespace
	}
	if len(records) == 0 {
		return nil
	}

	tx := ix.db.NewTransaction(true)
	defer tx.Discard()

	for _, record := range records {
		if record.ID == "" {
			return vector.ErrEmptyRecordID
		}
		value, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("%w: %w", vector.ErrSerializationFailed, err)
		}
		if err := tx.Set(makeRecordKey(namespace, record.ID), value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	ix.logger.Debug("upserted vector records", "namespace", namespace, "count", len(records))
	return nil
}

// Query scans the namespace and returns the topK most similar records.
// Scores are dot products; callers store and query unit vectors, which
// makes the score the cosine similarity.
func (ix *Index) Query(ctx context.Context, namespace string, queryVec []float32, topK int, filter vector.Filter) ([]vector.Match, error) {
	if namespace == "" {
		return nil, vector.ErrEmptyNamespace
	}
	if topK <= 0 {
		return []vector.Match{}, nil
	}

	var matches []vector.Match

	err := ix.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeNamespacePrefix(namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record vector.Record
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("%w: %w", vector.ErrSerializationFailed, err)
			}

			if filter.Kind != "" && record.Metadata.Kind != filter.Kind {
				continue
			}
			if len(record.Vector) == 0 {
				continue
			}

			matches = append(matches, vector.Match{
				ID:       record.ID,
				Score:    vector.DotProduct(queryVec, record.Vector),
				Metadata: record.Metadata,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b vector.Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// DeletePrefix removes every record in the namespace whose ID starts with
// prefix, in a single transaction. Returns the number of keys removed.
func (ix *Index) DeletePrefix(ctx context.Context, namespace, prefix string) (int, error) {
	if namespace == "" {
		return 0, vector.ErrEmptyNamespace
	}

	// Collect first, then delete in one write transaction.
	var keys [][]byte
	err := ix.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordKey(namespace, prefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	tx := ix.db.NewTransaction(true)
	defer tx.Discard()
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	ix.logger.Debug("deleted vector records", "namespace", namespace, "prefix", prefix, "count", len(keys))
	return len(keys), nil
}
