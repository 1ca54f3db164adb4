package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	moviesBody = `{"data":[{"id":7,"title":"Heat","year":1995,"genres":[{"name":"crime","label":"Crime"}]},{"id":8,"title":"Ronin","year":1998,"genres":"Action, Thriller"}],"pagination":{"total":42,"count":2,"per_page":10,"current_page":1,"total_pages":5}}`
	movieBody  = `{"data":{"id":7,"title":"Heat","year":1995,"plot":"A group of professional bank robbers...","directors":[{"full_name":"Michael Mann"}],"actors":"Al Pacino, Robert De Niro","box_office_collection":187436818,"imdb_rating":"8.3","imdb_votes":"700,000","poster":{"url":"http://img/heat.jpg","responsive":{"thumb":"http://img/heat_thumb.jpg","large":"http://img/heat_large.jpg"}}}}`
)

type testBackend struct {
	srv      *httptest.Server
	requests int32
	urls     chan string
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{
		urls: make(chan string, 100),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.requests, 1)
		b.urls <- r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/movies":
			w.Write([]byte(moviesBody))
		case r.URL.Path == "/api/movies/7":
			w.Write([]byte(movieBody))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Movie not found"}`))
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func testConfig(baseURL string) config {
	return config{
		BaseURL:         baseURL + "/api/",
		Timeout:         time.Second,
		StorageType:     "file",
		StoragePath:     "/storage",
		CachePath:       "/cache",
		CacheMaxEntries: 10,
		LogLevel:        "debug",
		LogEncoding:     "console",
	}
}

func newTestApp(t *testing.T, cfg config, fs afero.Fs) *app {
	t.Helper()
	registerTypes()
	a, err := newApp(context.Background(), cfg, fs, zap.NewNop())
	require.NoError(t, err)
	return a
}

func runCmd(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	err := a.run(context.Background(), args, out)
	return out.String(), err
}

func TestList(t *testing.T) {
	backend := newTestBackend(t)
	a := newTestApp(t, testConfig(backend.srv.URL), afero.NewMemMapFs())
	defer a.close()

	out, err := runCmd(t, a)
	require.NoError(t, err)
	require.Equal(t, "/api/movies?page=1", <-backend.urls)
	require.Contains(t, out, "Heat")
	require.Contains(t, out, "Action, Thriller")
	require.Contains(t, out, "Page 1 of 5")

	_, err = runCmd(t, a, "list", "3")
	require.NoError(t, err)
	require.Equal(t, "/api/movies?page=3", <-backend.urls)
	require.Equal(t, 3, a.store.State().ActivePage)
}

func TestSearch(t *testing.T) {
	backend := newTestBackend(t)
	a := newTestApp(t, testConfig(backend.srv.URL), afero.NewMemMapFs())
	defer a.close()

	out, err := runCmd(t, a, "search", "star wars", "2")
	require.NoError(t, err)
	require.Equal(t, "/api/movies?page=2&q=star%20wars", <-backend.urls)
	require.Contains(t, out, `Search results for "star wars"`)

	_, err = runCmd(t, a, "search")
	require.True(t, errors.Is(err, errUsage))
}

func TestShow(t *testing.T) {
	backend := newTestBackend(t)
	a := newTestApp(t, testConfig(backend.srv.URL), afero.NewMemMapFs())
	defer a.close()

	out, err := runCmd(t, a, "show", "7")
	require.NoError(t, err)
	require.Equal(t, "/api/movies/7", <-backend.urls)
	require.Contains(t, out, "Heat")
	require.Contains(t, out, "$187,436,818")
	require.Contains(t, out, "Michael Mann")
	require.Contains(t, out, "Al Pacino, Robert De Niro")
	require.Contains(t, out, "8.3/10 (700,000 votes)")
	require.Contains(t, out, "http://img/heat_thumb.jpg")
	require.Contains(t, out, "http://img/heat_large.jpg")
	// Missing values
	require.Contains(t, out, "Producers:")
	require.Contains(t, out, "N/A")

	_, err = runCmd(t, a, "show", "99")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
	require.Nil(t, a.store.State().SelectedMovie)

	_, err = runCmd(t, a, "show", "abc")
	require.True(t, errors.Is(err, errUsage))
}

func TestFavorites(t *testing.T) {
	backend := newTestBackend(t)
	fs := afero.NewMemMapFs()
	a := newTestApp(t, testConfig(backend.srv.URL), fs)
	defer a.close()

	out, err := runCmd(t, a, "favorites")
	require.NoError(t, err)
	require.Contains(t, out, "No favorites yet")

	out, err = runCmd(t, a, "favorite", "7")
	require.NoError(t, err)
	require.Contains(t, out, "Added movie 7")
	_, err = runCmd(t, a, "favorite", "99")
	require.NoError(t, err)

	// Persisted in the file storage
	data, err := afero.ReadFile(fs, "/storage/favorites.json")
	require.NoError(t, err)
	require.Equal(t, "[7,99]", string(data))

	out, err = runCmd(t, a, "favorites")
	require.NoError(t, err)
	require.Contains(t, out, "7\tHeat")
	require.Contains(t, out, "99\tN/A")

	out, err = runCmd(t, a, "list")
	require.NoError(t, err)
	require.Regexp(t, `\*\s+7\s+Heat`, out)

	out, err = runCmd(t, a, "favorite", "7")
	require.NoError(t, err)
	require.Contains(t, out, "Removed movie 7")
}

func TestUnknownCommand(t *testing.T) {
	backend := newTestBackend(t)
	a := newTestApp(t, testConfig(backend.srv.URL), afero.NewMemMapFs())
	defer a.close()

	_, err := runCmd(t, a, "foo")
	require.True(t, errors.Is(err, errUsage))

	out, err := runCmd(t, a, "help")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Commands:"))
}

func TestResponseCachePersistence(t *testing.T) {
	backend := newTestBackend(t)
	fs := afero.NewMemMapFs()
	cfg := testConfig(backend.srv.URL)

	a := newTestApp(t, cfg, fs)
	_, err := runCmd(t, a, "list")
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&backend.requests))
	require.NoError(t, a.close())

	exists, err := afero.Exists(fs, "/cache/responses.gob")
	require.NoError(t, err)
	require.True(t, exists)

	// A new app loads the persisted cache and doesn't send a request for the same page
	a = newTestApp(t, cfg, fs)
	defer a.close()
	out, err := runCmd(t, a, "list")
	require.NoError(t, err)
	require.Contains(t, out, "Ronin")
	require.Equal(t, int32(1), atomic.LoadInt32(&backend.requests))
}

func TestMemoryStorage(t *testing.T) {
	backend := newTestBackend(t)
	cfg := testConfig(backend.srv.URL)
	cfg.StorageType = "memory"
	a := newTestApp(t, cfg, afero.NewMemMapFs())
	defer a.close()

	_, err := runCmd(t, a, "favorite", "7")
	require.NoError(t, err)
	require.Equal(t, []int{7}, a.favorites.IDs())
}

func TestBadgerStorage(t *testing.T) {
	backend := newTestBackend(t)
	cfg := testConfig(backend.srv.URL)
	cfg.StorageType = "badger"
	cfg.StoragePath = t.TempDir()

	a := newTestApp(t, cfg, afero.NewMemMapFs())
	_, err := runCmd(t, a, "favorite", "7")
	require.NoError(t, err)
	require.NoError(t, a.close())

	// Reopen
	a = newTestApp(t, cfg, afero.NewMemMapFs())
	defer a.close()
	require.Equal(t, []int{7}, a.favorites.IDs())
}

func TestUnknownStorageType(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.StorageType = "foo"
	_, err := newApp(context.Background(), cfg, afero.NewMemMapFs(), zap.NewNop())
	require.Error(t, err)
}
