package api

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// newSOCKS5httpClient creates an HTTP client that connects via the SOCKS5 proxy, for example Tor at "127.0.0.1:9050".
func newSOCKS5httpClient(timeout time.Duration, socks5ProxyAddr string) (*http.Client, error) {
	dialer, err := proxy.SOCKS5("tcp", socks5ProxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("Couldn't create SOCKS5 dialer: %w", err)
	}
	transport := &http.Transport{
		Dial: dialer.Dial,
	}
	// The SOCKS5 dialer supports contexts, which makes canceled requests stop dialing
	if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
		transport.Dial = nil
		transport.DialContext = contextDialer.DialContext
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
