package snapshot_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/storage/snapshot"
)

// faultyStorage is an in-memory blob backend that starts failing
// writes after failAfter successful ones.
type faultyStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	writes    int
	failAfter int
}

func newFaultyStorage(failAfter int) *faultyStorage {
	return &faultyStorage{objects: map[string][]byte{}, failAfter: failAfter}
}

func (f *faultyStorage) Write(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writes >= f.failAfter {
		return fmt.Errorf("disk full")
	}
	f.writes++
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *faultyStorage) Read(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	return data, nil
}

func (f *faultyStorage) List(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *faultyStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *faultyStorage) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func durabilitySnapshot(runID string, generated time.Time) *core.Snapshot {
	return &core.Snapshot{
		RunID:     runID,
		Generated: generated,
		Version:   "test",
		Strategies: []core.StrategyResult{
			{Strategy: core.StrategyBTCOnly, Window: 30},
		},
	}
}

// A failed save must never clobber the previously readable snapshot.
func TestArchiveStore_FailedSaveKeepsPreviousLatest(t *testing.T) {
	ctx := context.Background()

	// First save needs two writes (history + latest); fail on the third.
	storage := newFaultyStorage(2)
	store := snapshot.NewArchiveStore(storage)

	first := durabilitySnapshot("run-1", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, first))

	second := durabilitySnapshot("run-2", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	err := store.Save(ctx, second)
	require.Error(t, err)

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID, "failed save must leave the prior latest readable")
}

func TestArchiveStore_PartialSaveNeverPromoted(t *testing.T) {
	ctx := context.Background()

	// Allow the history write, fail the latest-pointer update.
	storage := newFaultyStorage(3)
	store := snapshot.NewArchiveStore(storage)

	first := durabilitySnapshot("run-1", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, first))

	second := durabilitySnapshot("run-2", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.Error(t, store.Save(ctx, second))

	// The interrupted run is in history but latest still points at run-1.
	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)

	snaps, err := store.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}
