package storage

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type movieRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func newObservedStore(t *testing.T, backend Backend) (*Store, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewStore(backend, zap.New(core)), logs
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	fileBackend, err := NewFileBackend(afero.NewMemMapFs(), "/storage")
	require.NoError(t, err)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   fileBackend,
		"badger": NewBadgerBackend(db, "test-"),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store, logs := newObservedStore(t, backend)

			// Nothing set yet
			require.Equal(t, []int{}, Get(store, "favorites", []int{}))
			require.Equal(t, "fallback", Get(store, "name", "fallback"))

			store.Set("favorites", []int{10, 20, 30})
			require.Equal(t, []int{10, 20, 30}, Get(store, "favorites", []int{}))

			exp := []movieRef{{ID: 1, Title: "Big Buck Bunny"}, {ID: 2, Title: "Sintel"}}
			store.Set("recent", exp)
			if diff := cmp.Diff(exp, Get[[]movieRef](store, "recent", nil)); diff != "" {
				t.Errorf("unexpected value (-want +got):\n%s", diff)
			}

			store.Remove("favorites")
			require.Equal(t, []int{}, Get(store, "favorites", []int{}))
			// Removing twice is fine
			store.Remove("favorites")

			require.Zero(t, logs.Len())
		})
	}
}

func TestGetInvalidJSON(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store, logs := newObservedStore(t, backend)
			require.NoError(t, backend.Set("favorites", []byte("not valid json")))

			res := Get(store, "favorites", []int{})
			require.Equal(t, []int{}, res)

			errorLogs := logs.FilterField(zap.String("key", "favorites")).All()
			require.Len(t, errorLogs, 1)
			require.Equal(t, zapcore.ErrorLevel, errorLogs[0].Level)
		})
	}
}

func TestGetWrongType(t *testing.T) {
	store, logs := newObservedStore(t, NewMemoryBackend())
	store.Set("favorites", map[string]string{"foo": "bar"})

	require.Equal(t, []int{42}, Get(store, "favorites", []int{42}))
	require.Equal(t, 1, logs.Len())
}

// failingBackend simulates a backend that's full or unavailable.
type failingBackend struct {
	Backend
	err error
}

func (b failingBackend) Get(key string) ([]byte, bool, error) {
	return nil, false, b.err
}

func (b failingBackend) Set(key string, value []byte) error {
	return b.err
}

func (b failingBackend) Delete(key string) error {
	return b.err
}

func TestFailuresAreSwallowed(t *testing.T) {
	store, logs := newObservedStore(t, failingBackend{err: errors.New("quota exceeded")})

	require.NotPanics(t, func() {
		store.Set("favorites", []int{1})
		store.Remove("favorites")
	})
	require.Equal(t, []int{7}, Get(store, "favorites", []int{7}))
	require.Equal(t, 3, logs.FilterMessageSnippet("Couldn't").Len())
}

func TestSetUnencodableValue(t *testing.T) {
	backend := NewMemoryBackend()
	store, logs := newObservedStore(t, backend)
	store.Set("favorites", []int{1, 2})

	// Channels can't be encoded as JSON
	store.Set("favorites", make(chan int))

	require.Equal(t, []int{1, 2}, Get(store, "favorites", []int{}))
	require.Equal(t, 1, logs.FilterMessage("Couldn't encode value for storage").Len())
}

func TestFileBackendLayout(t *testing.T) {
	fs := afero.NewMemMapFs()
	backend, err := NewFileBackend(fs, "/data")
	require.NoError(t, err)
	store := NewStore(backend, zap.NewNop())

	store.Set("favorites", []int{10, 20})
	data, err := afero.ReadFile(fs, "/data/favorites.json")
	require.NoError(t, err)
	require.JSONEq(t, `[10,20]`, string(data))

	// Keys with path separators stay inside the directory
	store.Set("a/b", 1)
	exists, err := afero.Exists(fs, "/data/a%2Fb.json")
	require.NoError(t, err)
	require.True(t, exists)
}
