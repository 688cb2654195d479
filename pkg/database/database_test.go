package database

import (
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBadgerDB_InMemory(t *testing.T) {
	db, err := NewBadgerDB("")
	require.NoError(t, err)
	defer db.Close()

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("k"), []byte("v"))
	})
	require.NoError(t, err)

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("k"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, "v", string(val))
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestNewBadgerDB_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badger")

	db, err := NewBadgerDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("k"), []byte("persisted"))
	}))
	require.NoError(t, db.Close())

	db, err = NewBadgerDB(path)
	require.NoError(t, err)
	defer db.Close()

	err = db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("k"))
		return err
	})
	assert.NoError(t, err)
}
