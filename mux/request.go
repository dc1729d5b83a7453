package mux

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/vitalvas/edgemux/codec"
)

// Request is the per-dispatch request context handed to middleware and
// handlers. It must not be retained after the dispatch returns.
type Request struct {
	// Raw is the original request.
	Raw *http.Request

	// Method is the upper-cased request method.
	Method string

	// URL is the absolute request URL.
	URL *url.URL

	// Header is the request header.
	Header http.Header

	// Origin is scheme://host of the request URL.
	Origin string

	// Query holds the decoded query string.
	Query codec.Fields

	// Params holds path parameters bound by the matched pattern.
	Params Params

	// BodyContent is the decoded body for POST and PUT requests, or nil.
	BodyContent any

	// Cookies holds the decoded Cookie header unless cookie parsing is
	// disabled for the dispatch.
	Cookies map[string]string

	// HostContext and Env are opaque values forwarded from Config.
	HostContext any
	Env         any

	ctx    context.Context
	event  Event
	mu     sync.Mutex
	locals map[string]any
}

// Context returns the dispatch context.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Param returns the path parameter named name, or "".
func (r *Request) Param(name string) string {
	return r.Params.Get(name)
}

// Set stores a request-scoped value, letting middleware hand data to later
// middleware and the handler.
func (r *Request) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locals == nil {
		r.locals = make(map[string]any)
	}
	r.locals[key] = value
}

// Get returns a value stored with Set.
func (r *Request) Get(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.locals[key]
	return v, ok
}

// GetString returns a string stored with Set, or "".
func (r *Request) GetString(key string) string {
	v, _ := r.Get(key)
	s, _ := v.(string)
	return s
}

// WaitUntil registers task as deferred work with the host event. Without an
// event the task runs immediately.
func (r *Request) WaitUntil(task func()) {
	if r.event != nil {
		r.event.WaitUntil(task)
		return
	}
	task()
}
