package store

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"gamepot/internal/ports"
)

var snapshotKey = []byte("engine:snapshot")

// LevelDB implements ports.SnapshotStore on a LevelDB database. LevelDB
// writes are atomic per batch, so a crash mid-save never corrupts the
// previous snapshot.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (or creates) a LevelDB database at path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %q: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

// Save replaces the stored snapshot.
func (l *LevelDB) Save(data []byte) error {
	return l.db.Put(snapshotKey, data, nil)
}

// Load returns the stored snapshot, or ok=false when none exists.
func (l *LevelDB) Load() ([]byte, bool, error) {
	data, err := l.db.Get(snapshotKey, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Close releases the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

var _ ports.SnapshotStore = (*LevelDB)(nil)
