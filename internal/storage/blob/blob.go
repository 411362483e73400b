// Package blob provides byte-level storage backends for persisted
// snapshots.
package blob

import "context"

// Storage is the byte-level backend interface.
type Storage interface {
	// Write stores data at the given path, atomically where the
	// backend allows: a failed write never corrupts existing data.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path.
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}
