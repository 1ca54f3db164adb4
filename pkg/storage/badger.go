package storage

import (
	"errors"

	"github.com/dgraph-io/badger/v2"
)

var _ Backend = (*BadgerBackend)(nil)

// BadgerBackend is a persistent Backend, backed by BadgerDB.
// Multiple BadgerBackends can share one DB when they use different key prefixes.
type BadgerBackend struct {
	db        *badger.DB
	keyPrefix string
}

// NewBadgerBackend creates a new BadgerBackend.
// The DB is owned by the caller, who must close it when finished.
func NewBadgerBackend(db *badger.DB, keyPrefix string) *BadgerBackend {
	return &BadgerBackend{
		db:        db,
		keyPrefix: keyPrefix,
	}
}

// Get implements the Backend interface.
func (b *BadgerBackend) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(b.keyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, true, err
	}
	return value, true, nil
}

// Set implements the Backend interface.
func (b *BadgerBackend) Set(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(b.keyPrefix+key), value)
	})
}

// Delete implements the Backend interface.
func (b *BadgerBackend) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(b.keyPrefix + key))
	})
}
