package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type recordedRequest struct {
	url    string
	header http.Header
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *int32, chan recordedRequest) {
	t.Helper()
	var count int32
	requests := make(chan recordedRequest, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&count, 1)
		requests <- recordedRequest{url: r.URL.String(), header: r.Header.Clone()}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Count", "1")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &count, requests
}

func newTestClient(t *testing.T, baseURL string, cache Cache) *Client {
	t.Helper()
	opts := NewClientOpts(baseURL, time.Second, nil)
	client, err := NewClient(opts, cache, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewClientPreconditions(t *testing.T) {
	_, err := NewClient(DefaultClientOpts, nil, zap.NewNop())
	require.Error(t, err)

	opts := NewClientOpts("http://localhost/", time.Second, []string{"X-Foo"})
	_, err = NewClient(opts, nil, zap.NewNop())
	require.Error(t, err)

	opts = NewClientOpts("http://localhost/", time.Second, []string{"X-Foo: bar", ""})
	_, err = NewClient(opts, nil, zap.NewNop())
	require.NoError(t, err)
}

func TestGetSuccess(t *testing.T) {
	srv, _, requests := newTestServer(t, http.StatusOK, `{"data":[]}`)
	opts := NewClientOpts(srv.URL+"/api/", time.Second, []string{"X-Proxy-Apikey: secret"})
	client, err := NewClient(opts, nil, zap.NewNop())
	require.NoError(t, err)

	res, err := client.Get(context.Background(), "movies", Params{}.Add("page", 1).Add("q", "star wars"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.Status)
	require.JSONEq(t, `{"data":[]}`, string(res.Body))
	require.Equal(t, "1", res.Header.Get("X-Request-Count"))

	req := <-requests
	require.Equal(t, "/api/movies?page=1&q=star%20wars", req.url)
	require.Equal(t, "application/json", req.header.Get("Content-Type"))
	require.Equal(t, "secret", req.header.Get("X-Proxy-Apikey"))
	require.Empty(t, req.header.Get("Authorization"))
}

func TestGetToken(t *testing.T) {
	srv, _, requests := newTestServer(t, http.StatusOK, `{}`)
	client := newTestClient(t, srv.URL+"/", nil)

	_, err := client.Get(context.Background(), "movies", nil, WithToken("abc123"))
	require.NoError(t, err)
	require.Equal(t, "Bearer abc123", (<-requests).header.Get("Authorization"))

	// Token source as fallback
	opts := NewClientOpts(srv.URL+"/", time.Second, nil)
	opts.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "fromsource"})
	client, err = NewClient(opts, nil, zap.NewNop())
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "movies", nil)
	require.NoError(t, err)
	require.Equal(t, "Bearer fromsource", (<-requests).header.Get("Authorization"))

	// Explicit token wins
	_, err = client.Get(context.Background(), "movies", nil, WithToken("explicit"))
	require.NoError(t, err)
	require.Equal(t, "Bearer explicit", (<-requests).header.Get("Authorization"))
}

func TestGetCache(t *testing.T) {
	srv, count, _ := newTestServer(t, http.StatusOK, `{"data":{"id":1}}`)
	client := newTestClient(t, srv.URL+"/", NewInMemoryCache(0, 0))
	ctx := context.Background()

	res1, err := client.Get(ctx, "movies/1", nil)
	require.NoError(t, err)
	res2, err := client.Get(ctx, "movies/1", nil)
	require.NoError(t, err)
	require.Equal(t, res1, res2)
	require.EqualValues(t, 1, atomic.LoadInt32(count))

	// Different query string means different cache key
	_, err = client.Get(ctx, "movies/1", Params{}.Add("page", 1))
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(count))

	// Disabled cache neither reads nor writes
	_, err = client.Get(ctx, "movies/1", nil, WithoutCache())
	require.NoError(t, err)
	require.EqualValues(t, 3, atomic.LoadInt32(count))
	_, err = client.Get(ctx, "movies/2", nil, WithoutCache())
	require.NoError(t, err)
	_, err = client.Get(ctx, "movies/2", nil)
	require.NoError(t, err)
	require.EqualValues(t, 5, atomic.LoadInt32(count))
}

func TestGetServerError(t *testing.T) {
	srv, count, _ := newTestServer(t, http.StatusNotFound, `{"message":"Movie not found"}`)
	cache := NewInMemoryCache(0, 0)
	client := newTestClient(t, srv.URL+"/", cache)

	res, err := client.Get(context.Background(), "movies/999", nil)
	require.Nil(t, res)
	require.Error(t, err)
	resErr, ok := err.(*ResponseError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, resErr.Response.Status)
	require.Equal(t, "Movie not found", resErr.Message())
	require.Equal(t, "1", resErr.Response.Header.Get("X-Request-Count"))
	require.False(t, IsNetworkError(err))
	require.Equal(t, http.StatusNotFound, StatusCode(err))

	// Failures aren't cached
	require.Zero(t, cache.ItemCount())
	_, err = client.Get(context.Background(), "movies/999", nil)
	require.Error(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(count))
}

func TestGetNetworkError(t *testing.T) {
	// Reserve a port and close the listener, so nothing is listening there
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	client := newTestClient(t, "http://"+addr+"/", nil)
	_, err = client.Get(context.Background(), "movies", Params{}.Add("page", 1))
	require.Error(t, err)

	resErr, ok := err.(*ResponseError)
	require.True(t, ok)
	require.Equal(t, http.StatusServiceUnavailable, resErr.Response.Status)
	require.Equal(t, "Network error found!", resErr.Message())
	require.JSONEq(t, `{"message":"Network error found!"}`, string(resErr.Response.Body))
	require.Empty(t, resErr.Response.Header)
	require.True(t, IsNetworkError(err))
	require.NotNil(t, resErr.Unwrap())
}

func TestGetCanceledContext(t *testing.T) {
	srv, count, _ := newTestServer(t, http.StatusOK, `{}`)
	client := newTestClient(t, srv.URL+"/", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "movies", nil)
	require.True(t, IsNetworkError(err))
	require.True(t, errors.Is(err, context.Canceled))
	require.Zero(t, atomic.LoadInt32(count))
}

func TestGetInvalidURL(t *testing.T) {
	client := newTestClient(t, "http://[::1", nil)
	_, err := client.Get(context.Background(), "movies", nil)
	require.Equal(t, http.StatusInternalServerError, StatusCode(err))
	require.False(t, IsNetworkError(err))
}

func TestGetViaUnreachableProxy(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	proxyAddr := l.Addr().String()
	require.NoError(t, l.Close())

	srv, count, _ := newTestServer(t, http.StatusOK, `{}`)
	opts := NewClientOpts(srv.URL+"/", time.Second, nil)
	opts.SocksProxyAddr = proxyAddr
	client, err := NewClient(opts, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "movies", nil)
	require.True(t, IsNetworkError(err))
	require.Zero(t, atomic.LoadInt32(count))
}
