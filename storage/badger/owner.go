package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/storage"
)

// OwnerStore implements storage.OwnerRepository for BadgerDB.
type OwnerStore struct {
	backend *Backend
}

var _ storage.OwnerRepository = (*OwnerStore)(nil)

// NewOwnerStore creates a new OwnerStore on the given backend.
func NewOwnerStore(backend *Backend) *OwnerStore {
	return &OwnerStore{backend: backend}
}

// Close is a no-op; the backend owns the database lifecycle.
func (s *OwnerStore) Close() error {
	return nil
}

// UpsertProfile creates or replaces an owner profile.
func (s *OwnerStore) UpsertProfile(ctx context.Context, profile *core.OwnerProfile) (*core.OwnerProfile, error) {
	if profile == nil {
		return nil, storage.ErrNilRecord
	}
	if profile.OwnerID == "" {
		return nil, storage.ErrEmptyID
	}
	if err := core.ValidateTier(profile.Tier); err != nil {
		return nil, err
	}

	profile.UpdatedAt = time.Now().UTC()

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		value, err := storage.MarshalOwnerProfile(profile)
		if err != nil {
			return err
		}
		if err := tx.Set(makeOwnerKey(profile.OwnerID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return profile, err
}

// GetProfile retrieves an owner profile by owner ID.
func (s *OwnerStore) GetProfile(ctx context.Context, ownerID string) (*core.OwnerProfile, error) {
	if ownerID == "" {
		return nil, storage.ErrEmptyID
	}

	var result *core.OwnerProfile
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeOwnerKey(ownerID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalOwnerProfile(val)
			return err
		})
	}, false)

	return result, err
}
