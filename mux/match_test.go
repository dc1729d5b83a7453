package mux

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterMatch(t *testing.T) {
	r := NewRouter()
	usersID := r.Get("/users/:id", noopHandler)
	usersMe := r.Get("/users/me", noopHandler)
	posts := r.Get("/users/:uid/posts/:pid", noopHandler)
	root := r.Get("/", noopHandler)
	wild := r.Get("*", noopHandler)

	tests := []struct {
		name   string
		method string
		path   string
		want   *Route
		params map[string]string
	}{
		{"exact beats earlier param", http.MethodGet, "/users/me", usersMe, map[string]string{}},
		{"param binds", http.MethodGet, "/users/42", usersID, map[string]string{"id": "42"}},
		{"multiple params", http.MethodGet, "/users/1/posts/2", posts, map[string]string{"uid": "1", "pid": "2"}},
		{"trailing slash ignored", http.MethodGet, "/users/me/", usersMe, map[string]string{}},
		{"root", http.MethodGet, "/", root, map[string]string{}},
		{"wildcard fallback", http.MethodGet, "/nope/deeper", wild, map[string]string{}},
		{"head uses get", http.MethodHead, "/users/7", usersID, map[string]string{"id": "7"}},
		{"lowercase method", "get", "/users/me", usersMe, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := r.Match(tt.method, tt.path)
			require.True(t, m.Matched)
			assert.Same(t, tt.want, m.Route)
			assert.Equal(t, tt.params, m.Params.Map())
		})
	}
}

func TestRouterMatchMiss(t *testing.T) {
	r := NewRouter()
	r.Get("/a/:id", noopHandler)

	assert.False(t, r.Match(http.MethodGet, "/a").Matched)
	assert.False(t, r.Match(http.MethodGet, "/a/1/2").Matched)
	assert.False(t, r.Match(http.MethodPost, "/a/1").Matched)
}

func TestRouterMatchCatchAll(t *testing.T) {
	r := NewRouter()
	get := r.Get("/x", noopHandler)
	all := r.All("/x", noopHandler)
	anyPath := r.All("*", noopHandler)

	m := r.Match(http.MethodGet, "/x")
	assert.Same(t, get, m.Route)

	m = r.Match(http.MethodDelete, "/x")
	assert.Same(t, all, m.Route)

	m = r.Match(http.MethodPost, "/elsewhere")
	assert.Same(t, anyPath, m.Route)
}

func TestMatchFreshParamsPerCandidate(t *testing.T) {
	r := NewRouter()
	r.Get("/a/:x/b", noopHandler)
	second := r.Get("/a/:y/c", noopHandler)

	m := r.Match(http.MethodGet, "/a/1/c")
	require.True(t, m.Matched)
	assert.Same(t, second, m.Route)
	assert.Equal(t, map[string]string{"y": "1"}, m.Params.Map())
}

func TestParams(t *testing.T) {
	ps := Params{{Key: "a", Value: "1"}}
	ps = ps.set("b", "2")
	ps = ps.set("a", "3")

	v, ok := ps.ByName("a")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, "2", ps.Get("b"))
	assert.Equal(t, "", ps.Get("c"))
	assert.Len(t, ps, 2)
}
