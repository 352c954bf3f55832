package student

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORAGE INTERFACES
// These interfaces define the contract of the durable store.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotStore is a durable string key-value store holding serialized
// roster snapshots. It knows nothing about the snapshot format.
type SnapshotStore interface {
	// Get returns the value stored under key.
	// Returns shared.ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	// Returns shared.ErrCapacityExceeded if the store rejects the write
	// because of its size limits.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// NamedStore is implemented by stores that can report their backend name
// for logging.
type NamedStore interface {
	Name() string
}

// BackendName returns the backend name of s, or "unknown".
func BackendName(s SnapshotStore) string {
	if n, ok := s.(NamedStore); ok {
		return n.Name()
	}
	return "unknown"
}
