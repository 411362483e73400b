// Package snapshot persists analysis snapshots and serves the latest
// one back to readers. A failed save must never disturb the previous
// snapshot; the presentation side always sees a consistent
// last-known-good document.
package snapshot

import (
	"context"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

// Store is the snapshot persistence interface.
type Store interface {
	// Save persists a snapshot and makes it the latest.
	Save(ctx context.Context, snap *core.Snapshot) error

	// Latest returns the most recent snapshot, or
	// core.ErrSnapshotNotFound when none has been saved.
	Latest(ctx context.Context) (*core.Snapshot, error)

	// History returns up to limit snapshots, newest first.
	History(ctx context.Context, limit int) ([]*core.Snapshot, error)
}
