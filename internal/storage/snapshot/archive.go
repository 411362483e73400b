package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/storage/blob"
)

const (
	latestKey     = "latest.json"
	historyPrefix = "history"
)

// ArchiveStore keeps snapshots on any blob backend: a timestamped
// history object per run plus a latest pointer. The history object is
// written first, so a failure between the two writes leaves the
// previous latest intact.
type ArchiveStore struct {
	storage blob.Storage
}

// NewArchiveStore creates a Store over a blob backend.
func NewArchiveStore(storage blob.Storage) *ArchiveStore {
	return &ArchiveStore{storage: storage}
}

func (s *ArchiveStore) Save(ctx context.Context, snap *core.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	historyKey := fmt.Sprintf("%s/%s_%s.json",
		historyPrefix, snap.Generated.UTC().Format("20060102T150405Z"), snap.RunID)
	if err := s.storage.Write(ctx, historyKey, data); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	if err := s.storage.Write(ctx, latestKey, data); err != nil {
		return fmt.Errorf("updating latest: %w", err)
	}
	return nil
}

func (s *ArchiveStore) Latest(ctx context.Context) (*core.Snapshot, error) {
	exists, err := s.storage.Exists(ctx, latestKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.ErrSnapshotNotFound
	}

	data, err := s.storage.Read(ctx, latestKey)
	if err != nil {
		return nil, err
	}

	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &snap, nil
}

func (s *ArchiveStore) History(ctx context.Context, limit int) ([]*core.Snapshot, error) {
	keys, err := s.storage.List(ctx, historyPrefix)
	if err != nil {
		return nil, err
	}

	// Keys embed the generation timestamp, so lexical descending
	// order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	snaps := make([]*core.Snapshot, 0, len(keys))
	for _, key := range keys {
		data, err := s.storage.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		var snap core.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("unmarshaling %s: %w", key, err)
		}
		snaps = append(snaps, &snap)
	}
	return snaps, nil
}
