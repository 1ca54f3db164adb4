package storage

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Backend is the interface that the Store uses for persisting raw values.
// A package user must pass an implementation of this interface.
// Implementations for go-cache, BadgerDB and plain files exist in this package.
type Backend interface {
	// Get returns the value stored under key.
	// The boolean return value signals if the key was found.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	// Delete must not return an error if the key doesn't exist.
	Delete(key string) error
}

type resultKind int

const (
	resultFound resultKind = iota
	resultAbsent
	resultReadFailed
	resultDecodeFailed
)

func (k resultKind) String() string {
	switch k {
	case resultFound:
		return "found"
	case resultAbsent:
		return "absent"
	case resultReadFailed:
		return "read failed"
	case resultDecodeFailed:
		return "decode failed"
	}
	return "unknown"
}

// result is the outcome of a single lookup.
// It never leaves the package: Get turns everything but resultFound into the caller's default value.
type result struct {
	kind resultKind
	err  error
}

// Store is a JSON key-value store on top of a Backend.
// None of its methods return errors. Failures are logged and treated as absence (for reads) or as no-ops (for writes).
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// NewStore creates a new Store.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

func (s *Store) load(key string, target interface{}) result {
	data, found, err := s.backend.Get(key)
	if err != nil {
		return result{kind: resultReadFailed, err: err}
	} else if !found {
		return result{kind: resultAbsent}
	}
	if err = json.Unmarshal(data, target); err != nil {
		return result{kind: resultDecodeFailed, err: err}
	}
	return result{kind: resultFound}
}

// Get returns the value stored under key, or defaultValue if there's no such value or it can't be decoded into T.
func Get[T any](s *Store, key string, defaultValue T) T {
	var value T
	res := s.load(key, &value)
	switch res.kind {
	case resultFound:
		return value
	case resultAbsent:
		return defaultValue
	default:
		s.logger.Error("Couldn't read value from storage", zap.Error(res.err), zap.String("key", key), zap.Stringer("failure", res.kind))
		return defaultValue
	}
}

// Set stores value under key, JSON encoded.
// If encoding or writing fails, the error is logged and the previously stored value (if any) stays untouched.
func (s *Store) Set(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Couldn't encode value for storage", zap.Error(err), zap.String("key", key))
		return
	}
	if err = s.backend.Set(key, data); err != nil {
		s.logger.Error("Couldn't write value to storage", zap.Error(err), zap.String("key", key))
	}
}

// Remove deletes the value stored under key. It's a no-op if there's no such value.
func (s *Store) Remove(key string) {
	if err := s.backend.Delete(key); err != nil {
		s.logger.Error("Couldn't remove value from storage", zap.Error(err), zap.String("key", key))
	}
}
