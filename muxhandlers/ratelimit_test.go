package muxhandlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vitalvas/edgemux/cache"
	"github.com/vitalvas/edgemux/mux"
)

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := RateLimitMiddleware(RateLimitConfig{Rate: 0, Burst: 1})
		assert.ErrorIs(t, err, ErrInvalidRate)

		_, err = RateLimitMiddleware(RateLimitConfig{Rate: 1})
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("limits per key", func(t *testing.T) {
		mw, err := RateLimitMiddleware(RateLimitConfig{Rate: 0.001, Burst: 2})
		require.NoError(t, err)

		r := mux.NewRouter()
		r.Use(mw)
		r.Get("/", okHandler)

		request := func(addr string) *mux.Result {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = addr
			return serve(t, r, req)
		}

		assert.Equal(t, http.StatusOK, request("192.0.2.1:1000").StatusCode)
		assert.Equal(t, http.StatusOK, request("192.0.2.1:1001").StatusCode)

		res := request("192.0.2.1:1002")
		assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
		assert.NotEmpty(t, res.Header.Get("Retry-After"))
		assert.Equal(t, "Too Many Requests", string(res.Body))
		assert.Equal(t, "no-store", res.Header.Get("Cache-Control"))

		assert.Equal(t, http.StatusOK, request("192.0.2.2:1000").StatusCode)
	})

	t.Run("forwarded headers", func(t *testing.T) {
		request := func(r *mux.Router, forwarded string) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.9:1000"
			req.Header.Set("X-Forwarded-For", forwarded)
			return serve(t, r, req).StatusCode
		}

		ignored, err := RateLimitMiddleware(RateLimitConfig{Rate: 0.001, Burst: 1})
		require.NoError(t, err)

		r := mux.NewRouter()
		r.Use(ignored)
		r.Get("/", okHandler)

		assert.Equal(t, http.StatusOK, request(r, "198.51.100.1"))
		assert.Equal(t, http.StatusTooManyRequests, request(r, "198.51.100.2"))

		trusted, err := RateLimitMiddleware(RateLimitConfig{Rate: 0.001, Burst: 1, TrustForwarded: true})
		require.NoError(t, err)

		r = mux.NewRouter()
		r.Use(trusted)
		r.Get("/", okHandler)

		assert.Equal(t, http.StatusOK, request(r, "198.51.100.1"))
		assert.Equal(t, http.StatusOK, request(r, "198.51.100.2"))
		assert.Equal(t, http.StatusTooManyRequests, request(r, "198.51.100.1"))
	})

	t.Run("custom key", func(t *testing.T) {
		mw, err := RateLimitMiddleware(RateLimitConfig{
			Rate:    0.001,
			Burst:   1,
			KeyFunc: func(r *mux.Request) string { return r.Header.Get("X-Api-Key") },
		})
		require.NoError(t, err)

		r := mux.NewRouter()
		r.Use(mw)
		r.Get("/", okHandler)

		for key, want := range map[string]int{"a": http.StatusOK, "b": http.StatusOK} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Api-Key", key)
			assert.Equal(t, want, serve(t, r, req).StatusCode)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Api-Key", "a")
		assert.Equal(t, http.StatusTooManyRequests, serve(t, r, req).StatusCode)
	})
}

func TestRateLimitMiddlewareCachedRoute(t *testing.T) {
	mw, err := RateLimitMiddleware(RateLimitConfig{Rate: 0.001, Burst: 1})
	require.NoError(t, err)

	var calls int
	r := mux.NewRouter()
	r.Use(mw)
	r.Get("/cache", func(_ *mux.Request, w *mux.Response) error {
		calls++
		w.Send("fresh")
		return nil
	}).CacheTime(4000)

	store := cache.NewMemory()
	request := func(addr string) *mux.Result {
		req := httptest.NewRequest(http.MethodGet, "/cache", nil)
		req.RemoteAddr = addr

		res, err := mux.HandleRequest(context.Background(), mux.Config{Request: req, Router: r, Cache: store})
		require.NoError(t, err)
		return res
	}

	assert.Equal(t, http.StatusOK, request("8.8.8.8:1000").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, request("8.8.8.8:1001").StatusCode)
	assert.Equal(t, 1, store.Len())

	res := request("1.1.1.1:1000")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "fresh", string(res.Body))
	assert.Equal(t, "max-age=4000", res.Header.Get("Cache-Control"))
	assert.Equal(t, 1, calls)
}

func TestVisitorsEviction(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vs := &visitors{
		val:     make(map[string]*visitor),
		limit:   rate.Limit(1),
		burst:   1,
		idleTTL: time.Minute,
		now:     func() time.Time { return now },
	}

	first := vs.fetch("a")
	assert.Same(t, first, vs.fetch("a"))

	now = now.Add(2 * time.Minute)
	vs.fetch("b")
	assert.Len(t, vs.val, 1)
	assert.NotSame(t, first, vs.fetch("a"))
}
