package mux

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CacheKey is the protocol-level descriptor a response is cached under.
type CacheKey struct {
	Method string
	URL    string
}

// String returns "METHOD URL".
func (k CacheKey) String() string {
	return k.Method + " " + k.URL
}

// Cache is the host-provided response cache. Storage and eviction are
// entirely the implementation's concern.
type Cache interface {
	// Match returns the cached response for key, or nil on a miss.
	Match(ctx context.Context, key CacheKey) (*Result, error)

	// Put stores res under key.
	Put(ctx context.Context, key CacheKey, res *Result) error
}

// CacheKeyFunc derives the cache key URL for a request.
type CacheKeyFunc func(r *Request) string

// DefaultCacheKey returns the absolute request URL.
func DefaultCacheKey(r *Request) string {
	return r.URL.String()
}

// newCacheKey parses the derived URL into a GET key descriptor.
func newCacheKey(raw string) (CacheKey, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return CacheKey{}, fmt.Errorf("mux: cache key: %w", err)
	}

	if !u.IsAbs() {
		return CacheKey{}, fmt.Errorf("mux: cache key %q is not an absolute url", raw)
	}

	return CacheKey{Method: http.MethodGet, URL: u.String()}, nil
}
