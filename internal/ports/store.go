package ports

// SnapshotStore persists the engine's serialized state so open pools and
// balances survive a server restart. Implementations must make Save atomic:
// a crash mid-save may lose the latest snapshot but never corrupt the
// previous one.
type SnapshotStore interface {
	// Save replaces the stored snapshot.
	Save(data []byte) error

	// Load returns the stored snapshot, or ok=false when none exists.
	Load() (data []byte, ok bool, err error)

	// Close releases the underlying storage.
	Close() error
}
