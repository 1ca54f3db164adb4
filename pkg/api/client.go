package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type ClientOptions struct {
	// BaseURL is prepended to every resource as is, so it usually ends with a slash.
	BaseURL string
	Timeout time.Duration
	// Additional headers in a format like "X-Foo: bar".
	ExtraHeaders []string
	// TokenSource is used for requests without an explicit token. Can be nil.
	TokenSource oauth2.TokenSource
	// Optional SOCKS5 proxy, like "127.0.0.1:9050" for Tor
	SocksProxyAddr string
}

func NewClientOpts(baseURL string, timeout time.Duration, extraHeaders []string) ClientOptions {
	return ClientOptions{
		BaseURL:      baseURL,
		Timeout:      timeout,
		ExtraHeaders: extraHeaders,
	}
}

var DefaultClientOpts = ClientOptions{
	Timeout: 5 * time.Second,
}

// Client issues GET requests against a JSON API and caches successful responses by their full URL.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	cache        Cache
	extraHeaders map[string]string
	tokenSource  oauth2.TokenSource
	logger       *zap.Logger
}

// NewClient creates a new API client.
// If cache is nil, no responses are cached.
func NewClient(opts ClientOptions, cache Cache, logger *zap.Logger) (*Client, error) {
	// Precondition check
	if opts.BaseURL == "" {
		return nil, errors.New("opts.BaseURL must not be empty")
	}
	extraHeaderMap := make(map[string]string, len(opts.ExtraHeaders))
	for _, extraHeader := range opts.ExtraHeaders {
		if extraHeader == "" {
			continue
		}
		colonIndex := strings.Index(extraHeader, ":")
		if colonIndex <= 0 || colonIndex == len(extraHeader)-1 {
			return nil, errors.New("opts.ExtraHeaders elements must have a format like \"X-Foo: bar\"")
		}
		extraHeaderMap[strings.TrimSpace(extraHeader[:colonIndex])] = strings.TrimSpace(extraHeader[colonIndex+1:])
	}
	if cache == nil {
		cache = NoCache{}
	}
	httpClient := &http.Client{
		Timeout: opts.Timeout,
	}
	if opts.SocksProxyAddr != "" {
		var err error
		if httpClient, err = newSOCKS5httpClient(opts.Timeout, opts.SocksProxyAddr); err != nil {
			return nil, err
		}
	}

	return &Client{
		baseURL:      opts.BaseURL,
		httpClient:   httpClient,
		cache:        cache,
		extraHeaders: extraHeaderMap,
		tokenSource:  opts.TokenSource,
		logger:       logger,
	}, nil
}

type requestOptions struct {
	cacheEnabled bool
	token        string
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithoutCache makes the request skip the cache, for both reading and writing.
func WithoutCache() RequestOption {
	return func(o *requestOptions) {
		o.cacheEnabled = false
	}
}

// WithToken sets the bearer token for the request. An empty token means no "Authorization" header.
func WithToken(token string) RequestOption {
	return func(o *requestOptions) {
		o.token = token
	}
}

// URL returns the full request URL for the resource and params, which is also the cache key.
func (c *Client) URL(resource string, params Params) string {
	reqURL := c.baseURL + resource
	if query := params.Encode(); query != "" {
		reqURL += "?" + query
	}
	return reqURL
}

// Get fetches the resource, or returns the cached response if caching is enabled and a response for the exact URL was cached before.
// All errors are of type *ResponseError.
func (c *Client) Get(ctx context.Context, resource string, params Params, opts ...RequestOption) (*Response, error) {
	reqOpts := requestOptions{
		cacheEnabled: true,
	}
	for _, opt := range opts {
		opt(&reqOpts)
	}

	reqURL := c.URL(resource, params)
	zapFieldURL := zap.String("url", reqURL)

	// Check cache first
	if reqOpts.cacheEnabled {
		res, found, err := c.cache.Get(reqURL)
		if err != nil {
			c.logger.Error("Couldn't get response from cache", zap.Error(err), zapFieldURL)
		} else if !found {
			c.logger.Debug("Response not found in cache", zapFieldURL)
		} else {
			c.logger.Debug("Hit cache for response, returning result", zapFieldURL)
			return &res, nil
		}
	}

	token := reqOpts.token
	if token == "" && c.tokenSource != nil {
		t, err := c.tokenSource.Token()
		if err != nil {
			return nil, newInternalError(fmt.Errorf("Couldn't get API token: %w", err))
		}
		token = t.AccessToken
	}

	res, err := c.get(ctx, reqURL, token)
	if err != nil {
		return nil, err
	}

	// Fill cache
	if reqOpts.cacheEnabled {
		if err = c.cache.Set(reqURL, *res); err != nil {
			c.logger.Error("Couldn't cache response", zap.Error(err), zapFieldURL)
		}
	}

	return res, nil
}

func (c *Client) get(ctx context.Context, reqURL, token string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, newInternalError(fmt.Errorf("Couldn't create request object: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for headerKey, headerVal := range c.extraHeaders {
		req.Header.Set(headerKey, headerVal)
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	c.logger.Debug("Sending request...", zap.String("url", reqURL))
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Couldn't send request", zap.Error(err), zap.String("url", reqURL))
		return nil, newNetworkError(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		status := res.StatusCode
		if status >= 200 && status < 300 {
			status = http.StatusInternalServerError
		}
		return nil, newStatusError(status, fmt.Errorf("Couldn't read response body: %w", err))
	}

	result := Response{
		Body:   body,
		Status: res.StatusCode,
		Header: res.Header,
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &ResponseError{Response: result}
	}
	return &result, nil
}
