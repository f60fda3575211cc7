package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots")

	db, err := NewLevelDB(path)
	require.NoError(t, err)

	_, ok, err := db.Load()
	require.NoError(t, err)
	require.False(t, ok, "fresh store should hold no snapshot")

	require.NoError(t, db.Save([]byte(`{"v":1}`)))
	require.NoError(t, db.Save([]byte(`{"v":2}`)))

	data, ok, err := db.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"v":2}`), data, "save should overwrite")

	require.NoError(t, db.Close())

	// Snapshots survive reopening.
	db, err = NewLevelDB(path)
	require.NoError(t, err)
	defer db.Close()

	data, ok, err = db.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"v":2}`), data)
}
