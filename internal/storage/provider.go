// Package storage persists the single state snapshot the store writes
// through after every mutation.
package storage

// Provider is the interface for snapshot persistence. Implementations hold
// exactly one record: the serialized {notes, categories} state.
type Provider interface {
	// Load returns the current snapshot, or (nil, nil) when no snapshot
	// has been written yet.
	Load() ([]byte, error)
	// Save atomically replaces the snapshot. A reader must never observe
	// a partial write spanning two mutations.
	Save(data []byte) error
	// Close releases any underlying resources.
	Close() error
}
