package snapshot

import (
	"context"
	"sync"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

// MemoryStore is an in-memory snapshot store for tests and dry runs.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps []*core.Snapshot // newest last
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(ctx context.Context, snap *core.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *snap
	m.snaps = append(m.snaps, &copied)
	return nil
}

func (m *MemoryStore) Latest(ctx context.Context) (*core.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.snaps) == 0 {
		return nil, core.ErrSnapshotNotFound
	}
	copied := *m.snaps[len(m.snaps)-1]
	return &copied, nil
}

func (m *MemoryStore) History(ctx context.Context, limit int) ([]*core.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.snaps)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*core.Snapshot, 0, n)
	for i := len(m.snaps) - 1; i >= len(m.snaps)-n; i-- {
		copied := *m.snaps[i]
		out = append(out, &copied)
	}
	return out, nil
}
