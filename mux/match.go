package mux

import (
	"net/http"
	"strings"
)

// Param is a single path parameter extracted from a ":name" segment.
type Param struct {
	Key   string
	Value string
}

// Params holds path parameters in pattern order.
type Params []Param

// ByName returns the value of the first parameter named name and whether it
// exists.
func (ps Params) ByName(name string) (string, bool) {
	for _, p := range ps {
		if p.Key == name {
			return p.Value, true
		}
	}
	return "", false
}

// Get returns the value of the parameter named name, or "".
func (ps Params) Get(name string) string {
	v, _ := ps.ByName(name)
	return v
}

// Map returns the parameters as a map.
func (ps Params) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		m[p.Key] = p.Value
	}
	return m
}

// set binds name to value, replacing an earlier binding of the same name.
func (ps Params) set(name, value string) Params {
	for i := range ps {
		if ps[i].Key == name {
			ps[i].Value = value
			return ps
		}
	}
	return append(ps, Param{Key: name, Value: value})
}

// MatchResult is the outcome of resolving a method and path against the
// route table.
type MatchResult struct {
	Matched bool
	Route   *Route
	Params  Params
}

// Match resolves method and path. HEAD is matched against GET routes.
// When the method table has no match the catch-all table is tried.
func (r *Router) Match(method, path string) MatchResult {
	method = strings.ToUpper(method)
	if method == http.MethodHead {
		method = http.MethodGet
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if m := matchTable(r.tables[method], path); m.Matched {
		return m
	}

	if all := r.tables[methodAll]; all.len() > 0 {
		return matchTable(all, path)
	}

	return MatchResult{}
}

// matchTable applies the matching priority to a single table:
//
//  1. exact pattern, trailing slash ignored on both sides
//  2. the first ":param" pattern in iteration order whose segments align
//  3. the "*" wildcard
//
// An exact match beats a parameterized one regardless of registration order.
func matchTable(t *routeTable, path string) MatchResult {
	if t.len() == 0 {
		return MatchResult{}
	}

	path = trimTrailingSlash(path)

	var exact *Route
	for _, p := range t.order {
		if p != wildcardPattern && trimTrailingSlash(p) == path {
			exact = t.routes[p]
		}
	}
	if exact != nil {
		return MatchResult{Matched: true, Route: exact}
	}

	pathSegs := strings.Split(path, "/")
	for _, p := range t.order {
		if !strings.Contains(p, "/:") {
			continue
		}

		if params, ok := matchSegments(strings.Split(trimTrailingSlash(p), "/"), pathSegs); ok {
			return MatchResult{Matched: true, Route: t.routes[p], Params: params}
		}
	}

	if wc, ok := t.routes[wildcardPattern]; ok {
		return MatchResult{Matched: true, Route: wc}
	}

	return MatchResult{}
}

// matchSegments walks pattern and path segments left to right. Literal
// segments must be equal; ":name" segments always match and bind.
func matchSegments(patternSegs, pathSegs []string) (Params, bool) {
	if len(patternSegs) != len(pathSegs) {
		return nil, false
	}

	var params Params
	for i, seg := range patternSegs {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			params = params.set(name, pathSegs[i])
			continue
		}

		if seg != pathSegs[i] {
			return nil, false
		}
	}

	return params, true
}
