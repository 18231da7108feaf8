package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"paper_trader/internal/models"
)

// DefaultSnapshotKey is where the portfolio snapshot lives in the blob
// store unless the trading profile overrides it.
const DefaultSnapshotKey = "trading_state/current_state.json"

// SnapshotStore persists the portfolio snapshot document at a fixed key.
// Writes overwrite the previous snapshot; the latest writer wins.
type SnapshotStore struct {
	blobs BlobStore
	key   string
}

func NewSnapshotStore(blobs BlobStore, key string) *SnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotStore{blobs: blobs, key: key}
}

// Key reports the blob key snapshots are written to.
func (s *SnapshotStore) Key() string { return s.key }

// Save serializes the snapshot and writes it to the blob store.
func (s *SnapshotStore) Save(ctx context.Context, snap models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// Load reads the latest snapshot. Returns nil with no error when none has
// been written yet.
func (s *SnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	data, ok, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &snap, nil
}
