// Package cache provides mux.Cache implementations: an in-process Memory
// cache and a Redis-backed cache.
//
// Entries live for the max-age carried in the stored response's
// Cache-Control header; s-maxage wins when present. Responses without a
// positive lifetime are not stored.
package cache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/edgemux/mux"
)

var (
	// ErrNoClient is returned when a Redis cache is built without a client.
	ErrNoClient = errors.New("cache: no redis client")

	_ mux.Cache = (*Memory)(nil)
	_ mux.Cache = (*Redis)(nil)
)

// TTL returns how long res may be cached according to its Cache-Control
// header. Zero means res must not be cached.
func TTL(res *mux.Result) time.Duration {
	if res == nil {
		return 0
	}

	var maxAge, sMaxAge int
	var hasShared bool
	for _, directive := range strings.Split(res.Header.Get("Cache-Control"), ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))

		switch {
		case directive == "no-store", directive == "private":
			return 0
		case strings.HasPrefix(directive, "s-maxage="):
			if n, err := strconv.Atoi(strings.TrimPrefix(directive, "s-maxage=")); err == nil {
				sMaxAge, hasShared = n, true
			}
		case strings.HasPrefix(directive, "max-age="):
			if n, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age=")); err == nil {
				maxAge = n
			}
		}
	}

	if hasShared {
		maxAge = sMaxAge
	}
	if maxAge <= 0 {
		return 0
	}

	return time.Duration(maxAge) * time.Second
}

// entry is the serialized form of a cached response.
type entry struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func encodeResult(res *mux.Result) ([]byte, error) {
	var buf bytes.Buffer
	e := entry{StatusCode: res.StatusCode, Header: res.Header, Body: res.Body}
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("cache: encode: %w", err)
	}

	return buf.Bytes(), nil
}

func decodeResult(b []byte) (*mux.Result, error) {
	var e entry
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return nil, fmt.Errorf("cache: decode: %w", err)
	}

	return &mux.Result{StatusCode: e.StatusCode, Header: e.Header, Body: e.Body}, nil
}
