package mux

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

// wildcardPattern is the catch-all pattern matched when nothing else in a
// table does.
const wildcardPattern = "*"

// methodAll is the table key for routes registered with Router.All.
const methodAll = "ALL"

// HandlerFunc is the terminal handler of a route. A returned error is routed
// to the router's error handler exactly like next(err) from middleware.
type HandlerFunc func(r *Request, w *Response) error

// NextFunc advances the middleware chain. Calling it with nil continues,
// calling it with an error transfers control to the error handler.
type NextFunc func(err error)

// MiddlewareFunc runs before the handler. It must call next before
// returning to let the chain continue; returning without calling next
// halts the chain and the accumulated response is sent as is.
type MiddlewareFunc func(r *Request, w *Response, next NextFunc)

// ErrorHandlerFunc receives errors signalled by middleware or handlers.
// Calling next(nil) marks the chain complete; returning without calling
// next finishes the request with the accumulated response.
type ErrorHandlerFunc func(err error, r *Request, w *Response, next NextFunc)

// Route is a registered association between a method, a path pattern and
// its handler, optional route-scoped middleware and optional cache time.
type Route struct {
	method       string
	pattern      string
	handler      HandlerFunc
	middleware   MiddlewareFunc
	cacheTime    int
	hasCacheTime bool
}

// Method returns the method the route was registered for, or "ALL" for
// catch-all routes.
func (rt *Route) Method() string { return rt.method }

// Pattern returns the normalized path pattern.
func (rt *Route) Pattern() string { return rt.pattern }

// Handler returns the route handler.
func (rt *Route) Handler() HandlerFunc { return rt.handler }

// GetMiddleware returns the route-scoped middleware, or nil.
func (rt *Route) GetMiddleware() MiddlewareFunc { return rt.middleware }

// GetCacheTime returns the route cache time in seconds and whether one was
// set explicitly.
func (rt *Route) GetCacheTime() (int, bool) { return rt.cacheTime, rt.hasCacheTime }

// Middleware sets the single route-scoped middleware. It runs after every
// global middleware and before the handler.
func (rt *Route) Middleware(mw MiddlewareFunc) *Route {
	rt.middleware = mw
	return rt
}

// CacheTime overrides the dispatch-wide cache time for this route.
func (rt *Route) CacheTime(seconds int) *Route {
	rt.cacheTime = seconds
	rt.hasCacheTime = true
	return rt
}

// cacheTimeOr resolves the route cache time against the dispatch default.
func (rt *Route) cacheTimeOr(def int) int {
	if rt.hasCacheTime {
		return rt.cacheTime
	}
	return def
}

// routeTable maps patterns to routes for a single method. Iteration order
// is first-insertion order; re-registering a pattern replaces the route
// but keeps its position.
type routeTable struct {
	order  []string
	routes map[string]*Route
}

func newRouteTable() *routeTable {
	return &routeTable{routes: make(map[string]*Route)}
}

func (t *routeTable) set(rt *Route) {
	if _, exists := t.routes[rt.pattern]; !exists {
		t.order = append(t.order, rt.pattern)
	}
	t.routes[rt.pattern] = rt
}

func (t *routeTable) len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Router is the route table: method tables, a catch-all table, global
// middleware and a single error handler.
//
// Routes are registered once at startup and read during dispatch:
//
//	r := mux.NewRouter()
//	r.Use(logRequest)
//	r.Get("/users/:id", showUser)
//	r.Get("/cache", cached).CacheTime(4000)
//	r.All("*", fallback)
type Router struct {
	mu           sync.RWMutex
	middlewares  []MiddlewareFunc
	errorHandler ErrorHandlerFunc
	tables       map[string]*routeTable
}

// NewRouter returns a new, empty router.
func NewRouter() *Router {
	return &Router{
		tables: make(map[string]*routeTable),
	}
}

// Use appends global middleware. Nil entries are ignored.
func (r *Router) Use(mwf ...MiddlewareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mw := range mwf {
		if mw != nil {
			r.middlewares = append(r.middlewares, mw)
		}
	}
}

// Error sets the error handler, replacing any previous one.
func (r *Router) Error(h ErrorHandlerFunc) {
	r.mu.Lock()
	r.errorHandler = h
	r.mu.Unlock()
}

// Handle registers handler for method and pattern. The last registration
// for a given method and pattern wins.
func (r *Router) Handle(method, pattern string, handler HandlerFunc) *Route {
	method = strings.ToUpper(method)
	rt := &Route{
		method:  method,
		pattern: cleanPattern(pattern),
		handler: handler,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[method]
	if !ok {
		t = newRouteTable()
		r.tables[method] = t
	}
	t.set(rt)

	return rt
}

// Get registers a GET route. HEAD requests are matched against GET routes.
func (r *Router) Get(pattern string, handler HandlerFunc) *Route {
	return r.Handle(http.MethodGet, pattern, handler)
}

// Post registers a POST route.
func (r *Router) Post(pattern string, handler HandlerFunc) *Route {
	return r.Handle(http.MethodPost, pattern, handler)
}

// Put registers a PUT route.
func (r *Router) Put(pattern string, handler HandlerFunc) *Route {
	return r.Handle(http.MethodPut, pattern, handler)
}

// Patch registers a PATCH route.
func (r *Router) Patch(pattern string, handler HandlerFunc) *Route {
	return r.Handle(http.MethodPatch, pattern, handler)
}

// Delete registers a DELETE route.
func (r *Router) Delete(pattern string, handler HandlerFunc) *Route {
	return r.Handle(http.MethodDelete, pattern, handler)
}

// Options registers an OPTIONS route.
func (r *Router) Options(pattern string, handler HandlerFunc) *Route {
	return r.Handle(http.MethodOptions, pattern, handler)
}

// All registers a catch-all route, matched for any method when no
// method-specific route matches.
func (r *Router) All(pattern string, handler HandlerFunc) *Route {
	return r.Handle(methodAll, pattern, handler)
}

// WalkFunc is called for each registered route by Walk.
type WalkFunc func(route *Route) error

// Walk calls fn for every route, method tables first in method name order,
// then the catch-all table. Routes within a table are visited in match
// iteration order. Walk stops at the first error.
func (r *Router) Walk(fn WalkFunc) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]string, 0, len(r.tables))
	for m := range r.tables {
		if m != methodAll {
			methods = append(methods, m)
		}
	}
	sort.Strings(methods)
	methods = append(methods, methodAll)

	for _, m := range methods {
		t := r.tables[m]
		if t == nil {
			continue
		}
		for _, p := range t.order {
			if err := fn(t.routes[p]); err != nil {
				return err
			}
		}
	}

	return nil
}

// snapshot copies the global middleware and returns the error handler so a
// dispatch sees a stable view.
func (r *Router) snapshot() ([]MiddlewareFunc, ErrorHandlerFunc) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mws := make([]MiddlewareFunc, len(r.middlewares), len(r.middlewares)+1)
	copy(mws, r.middlewares)

	return mws, r.errorHandler
}
