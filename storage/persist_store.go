package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// PersistenceStore wraps LevelDB for raw key-value persistence.
// This is the foundational persistence layer - no versioning logic here.
// Thread-safe: LevelDB handles its own synchronization.
type PersistenceStore struct {
	db *leveldb.DB
}

// NewPersistenceStore opens or creates a LevelDB database at the given path.
// If path is empty, uses in-memory storage.
func NewPersistenceStore(path string) (*PersistenceStore, error) {
	var db *leveldb.DB
	var err error

	if path == "" {
		memStorage := leveldbstorage.NewMemStorage()
		db, err = leveldb.Open(memStorage, nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	return &PersistenceStore{db: db}, nil
}

// NewMemoryPersistenceStore creates an in-memory PersistenceStore for testing.
func NewMemoryPersistenceStore() (*PersistenceStore, error) {
	return NewPersistenceStore("")
}

// Get retrieves a value by key. Returns (nil, false, nil) if not found.
func (ps *PersistenceStore) Get(key []byte) ([]byte, bool, error) {
	data, err := ps.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get %x: %w", key, err)
	}
	return data, true, nil
}

func (ps *PersistenceStore) Put(key []byte, value []byte) error {
	return ps.db.Put(key, value, nil)
}

func (ps *PersistenceStore) Delete(key []byte) error {
	return ps.db.Delete(key, nil)
}

// GetFloor returns the value of the greatest key within prefix that is
// lexicographically <= prefix+suffix, or (nil, false) when no such key
// exists. Used for "latest version at or before block" lookups where
// suffix is a big-endian block number.
func (ps *PersistenceStore) GetFloor(prefix []byte, suffix []byte) ([]byte, bool, error) {
	iter := ps.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	target := append(append([]byte{}, prefix...), suffix...)

	// Position at the first key strictly greater than target, then step
	// back once. Seek returns false when every key is <= target.
	if iter.Seek(append(target, 0x00)) {
		if !iter.Prev() {
			return nil, false, iter.Error()
		}
	} else {
		if !iter.Last() {
			return nil, false, iter.Error()
		}
	}
	value := append([]byte{}, iter.Value()...)
	return value, true, iter.Error()
}

// Close closes the underlying database.
func (ps *PersistenceStore) Close() error {
	return ps.db.Close()
}
