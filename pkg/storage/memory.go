package storage

import (
	"fmt"

	gocache "github.com/patrickmn/go-cache"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps values in process memory, backed by github.com/patrickmn/go-cache.
// Values never expire. It doesn't persist its data, so it's mostly useful for tests and short-lived sessions.
type MemoryBackend struct {
	cache *gocache.Cache
}

// NewMemoryBackend creates a new, empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get implements the Backend interface.
func (b *MemoryBackend) Get(key string) ([]byte, bool, error) {
	valueIface, found := b.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	value, ok := valueIface.([]byte)
	if !ok {
		return nil, true, fmt.Errorf("Couldn't cast stored value to []byte: type was: %T", valueIface)
	}
	// Copy, so that callers can't modify the stored value
	return append([]byte(nil), value...), true, nil
}

// Set implements the Backend interface.
func (b *MemoryBackend) Set(key string, value []byte) error {
	b.cache.Set(key, append([]byte(nil), value...), gocache.NoExpiration)
	return nil
}

// Delete implements the Backend interface.
func (b *MemoryBackend) Delete(key string) error {
	b.cache.Delete(key)
	return nil
}
