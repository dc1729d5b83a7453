package mux

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(_ *Request, _ *Response) error { return nil }

func TestRouterHandle(t *testing.T) {
	t.Run("normalizes patterns", func(t *testing.T) {
		r := NewRouter()

		assert.Equal(t, "*", r.Get("/*", noopHandler).Pattern())
		assert.Equal(t, "/users", r.Get("users", noopHandler).Pattern())
		assert.Equal(t, "*", r.Get("*", noopHandler).Pattern())
		assert.Equal(t, "/a/:id", r.Get("/a/:id", noopHandler).Pattern())
	})

	t.Run("upper-cases method", func(t *testing.T) {
		r := NewRouter()

		rt := r.Handle("post", "/x", noopHandler)
		assert.Equal(t, http.MethodPost, rt.Method())

		m := r.Match(http.MethodPost, "/x")
		assert.True(t, m.Matched)
	})

	t.Run("last registration wins and keeps position", func(t *testing.T) {
		r := NewRouter()
		r.Get("/a", noopHandler)
		r.Get("/b", noopHandler)
		second := r.Get("/a", noopHandler).CacheTime(10)

		var patterns []string
		require.NoError(t, r.Walk(func(rt *Route) error {
			patterns = append(patterns, rt.Pattern())
			return nil
		}))
		assert.Equal(t, []string{"/a", "/b"}, patterns)

		m := r.Match(http.MethodGet, "/a")
		require.True(t, m.Matched)
		assert.Same(t, second, m.Route)
	})

	t.Run("method helpers", func(t *testing.T) {
		r := NewRouter()
		r.Post("/p", noopHandler)
		r.Put("/p", noopHandler)
		r.Patch("/p", noopHandler)
		r.Delete("/p", noopHandler)
		r.Options("/p", noopHandler)

		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions} {
			assert.True(t, r.Match(method, "/p").Matched, method)
		}
		assert.False(t, r.Match(http.MethodGet, "/p").Matched)
	})
}

func TestRouteOptions(t *testing.T) {
	r := NewRouter()
	mw := func(_ *Request, _ *Response, next NextFunc) { next(nil) }

	rt := r.Get("/x", noopHandler).Middleware(mw)
	assert.NotNil(t, rt.GetMiddleware())

	_, ok := rt.GetCacheTime()
	assert.False(t, ok)
	assert.Equal(t, 30, rt.cacheTimeOr(30))

	rt.CacheTime(0)
	secs, ok := rt.GetCacheTime()
	assert.True(t, ok)
	assert.Equal(t, 0, secs)
	assert.Equal(t, 0, rt.cacheTimeOr(30))
}

func TestRouterUse(t *testing.T) {
	r := NewRouter()
	r.Use(nil, func(_ *Request, _ *Response, next NextFunc) { next(nil) })

	mws, eh := r.snapshot()
	assert.Len(t, mws, 1)
	assert.Nil(t, eh)

	r.Error(func(_ error, _ *Request, _ *Response, _ NextFunc) {})
	_, eh = r.snapshot()
	assert.NotNil(t, eh)
}

func TestRouterSnapshotIsolation(t *testing.T) {
	r := NewRouter()
	r.Use(func(_ *Request, _ *Response, next NextFunc) { next(nil) })

	mws, _ := r.snapshot()
	mws = append(mws, func(_ *Request, _ *Response, next NextFunc) { next(nil) })
	assert.Len(t, mws, 2)

	again, _ := r.snapshot()
	assert.Len(t, again, 1)
}

func TestRouterWalk(t *testing.T) {
	r := NewRouter()
	r.All("*", noopHandler)
	r.Post("/p", noopHandler)
	r.Get("/g1", noopHandler)
	r.Get("/g2", noopHandler)

	var visited []string
	require.NoError(t, r.Walk(func(rt *Route) error {
		visited = append(visited, rt.Method()+" "+rt.Pattern())
		return nil
	}))
	assert.Equal(t, []string{"GET /g1", "GET /g2", "POST /p", "ALL *"}, visited)

	t.Run("stops on error", func(t *testing.T) {
		stop := errors.New("stop")
		var n int
		err := r.Walk(func(_ *Route) error {
			n++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, n)
	})
}
