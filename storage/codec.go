package storage

import (
	"encoding/json"
	"fmt"

	"github.com/LakGar/Lumina-sub000/core"
)

// MarshalEntryRecord encodes an entry record for storage.
func MarshalEntryRecord(record *core.EntryRecord) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalEntryRecord decodes an entry record from storage.
func UnmarshalEntryRecord(data []byte) (*core.EntryRecord, error) {
	var record core.EntryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalOwnerProfile encodes an owner profile for storage.
func MarshalOwnerProfile(profile *core.OwnerProfile) ([]byte, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalOwnerProfile decodes an owner profile from storage.
func UnmarshalOwnerProfile(data []byte) (*core.OwnerProfile, error) {
	var profile core.OwnerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &profile, nil
}
