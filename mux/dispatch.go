package mux

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitalvas/edgemux/codec"
	"github.com/vitalvas/edgemux/logger"
)

// Event is the host's per-request execution context. WaitUntil registers
// work the host must let finish before it considers the request done.
type Event interface {
	Request() *http.Request
	WaitUntil(task func())
}

// Config holds everything a single dispatch needs.
type Config struct {
	// Request is the incoming request. When nil, Event.Request() is used.
	Request *http.Request

	// Event is the optional host execution context used for deferred work.
	Event Event

	// Router holds the route table, middleware and error handler.
	Router *Router

	// CacheTime is the default cache time in seconds for routes without an
	// override.
	CacheTime int

	// SharedMaxAge adds s-maxage to the Cache-Control header.
	SharedMaxAge bool

	// DisableCookieParsing skips decoding the Cookie header.
	DisableCookieParsing bool

	// CacheKey derives the cache key URL. Defaults to DefaultCacheKey.
	CacheKey CacheKeyFunc

	// Cache is the response cache. A nil cache disables caching.
	Cache Cache

	// Context and Env are forwarded to Request.HostContext and Request.Env.
	Context any
	Env     any

	// Decoder decodes POST and PUT bodies.
	Decoder codec.Decoder

	// Logger defaults to a logger that discards everything.
	Logger logger.Logger
}

// HandleRequest dispatches a single request through the router and returns
// the response to send.
//
// The returned error is non-nil only when the configuration cannot produce
// a dispatch at all. Routing misses produce the fixed 404 result; errors
// nothing resolves produce a 500 result.
func HandleRequest(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Router == nil {
		return nil, ErrNoRouter
	}

	req := cfg.Request
	if req == nil && cfg.Event != nil {
		req = cfg.Event.Request()
	}
	if req == nil {
		return nil, ErrNoRequest
	}

	if ctx == nil {
		ctx = req.Context()
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	d := &dispatch{cfg: cfg, ctx: ctx, raw: req, log: log}
	return d.run(), nil
}

// dispatch carries the state of one HandleRequest call.
type dispatch struct {
	cfg Config
	ctx context.Context
	raw *http.Request
	log logger.Logger

	req       *Request
	res       *Response
	route     *Route
	cacheTime int
	cacheKey  *CacheKey
	keyed     bool
}

func (d *dispatch) run() *Result {
	// PARSE
	u := requestURL(d.raw)
	method := strings.ToUpper(d.raw.Method)

	d.req = &Request{
		Raw:         d.raw,
		Method:      method,
		URL:         u,
		Header:      d.raw.Header,
		Origin:      originOf(u),
		Query:       codec.ParseQuery(u.RawQuery),
		HostContext: d.cfg.Context,
		Env:         d.cfg.Env,
		ctx:         d.ctx,
		event:       d.cfg.Event,
	}

	// MATCH
	m := d.cfg.Router.Match(method, u.Path)
	if !m.Matched {
		d.log.Debug("no route matched", &logger.LogContext{Data: map[string]any{"method": method, "path": u.Path}})
		return notFoundResult()
	}

	d.route = m.Route
	d.req.Params = m.Params
	d.cacheTime = d.route.cacheTimeOr(d.cfg.CacheTime)

	if !d.cfg.DisableCookieParsing {
		d.req.Cookies = parseCookies(d.raw)
	}

	d.res = newResponse()
	d.res.header.Set("Cache-Control", cacheControlValue(d.cacheTime, d.cfg.SharedMaxAge))

	middlewares, errorHandler := d.cfg.Router.snapshot()
	if mw := d.route.middleware; mw != nil {
		middlewares = append(middlewares, mw)
	}
	c := chain{middlewares: middlewares, errorHandler: errorHandler}

	var cr chainResult
	if err := d.decodeBody(); err != nil {
		cr = c.fail(err, d.req, d.res)
	} else {
		// MIDDLEWARE
		cr = c.run(d.req, d.res)
	}

	if cr.state == chainComplete {
		// CACHE_CHECK
		if cached := d.cacheLookup(); cached != nil {
			return cached
		}

		// HANDLE
		if err := d.route.handler(d.req, d.res); err != nil {
			cr = c.fail(err, d.req, d.res)
		}
	}

	if cr.state != chainError {
		if err := d.res.Err(); err != nil {
			d.res.err = nil
			cr = c.fail(err, d.req, d.res)
			if cr.state == chainComplete && d.res.Err() != nil {
				cr = chainResult{state: chainError, err: d.res.Err()}
			}
		}
	}

	if cr.state == chainError {
		d.log.Warn("unhandled error", &logger.LogContext{Error: fmt.Errorf("%w: %w", ErrUnhandled, cr.err), Request: d.raw})
		return errorResult()
	}

	// BUILD_RESPONSE
	res := d.res.result()

	// CACHE_WRITE
	d.cacheWrite(res)

	return res
}

// decodeBody decodes POST and PUT bodies into Request.BodyContent.
func (d *dispatch) decodeBody() error {
	if d.req.Method != http.MethodPost && d.req.Method != http.MethodPut {
		return nil
	}

	body, err := d.cfg.Decoder.Decode(d.raw, d.req.Origin)
	if err != nil {
		return err
	}

	d.req.BodyContent = body
	return nil
}

// key returns the cache key for GET dispatches, deriving it on first use.
// It is first needed after the chain has run, so key functions see the
// locals middleware set. A nil key disables caching for the dispatch.
func (d *dispatch) key() *CacheKey {
	if !d.keyed {
		d.keyed = true
		d.cacheKey = d.resolveCacheKey()
	}

	return d.cacheKey
}

func (d *dispatch) resolveCacheKey() *CacheKey {
	if d.req.Method != http.MethodGet || d.cfg.Cache == nil || d.cacheTime <= 0 {
		return nil
	}

	fn := d.cfg.CacheKey
	if fn == nil {
		fn = DefaultCacheKey
	}

	key, err := newCacheKey(fn(d.req))
	if err != nil {
		d.log.Error("cache key", &logger.LogContext{Error: err, Request: d.raw})
		return nil
	}

	return &key
}

func (d *dispatch) cacheLookup() *Result {
	key := d.key()
	if key == nil {
		return nil
	}

	cached, err := d.cfg.Cache.Match(d.ctx, *key)
	if err != nil {
		d.log.Error("cache match", &logger.LogContext{Error: err, Request: d.raw})
		return nil
	}
	if cached == nil {
		return nil
	}

	d.log.Debug("cache hit", &logger.LogContext{Data: map[string]any{"key": key.String()}})
	return cached.Clone()
}

// cacheWrite stores a clone of res as deferred work. Without an event the
// write runs before HandleRequest returns.
func (d *dispatch) cacheWrite(res *Result) {
	k := d.key()
	if k == nil {
		return
	}

	key := *k
	clone := res.Clone()
	ctx := context.WithoutCancel(d.ctx)
	cache := d.cfg.Cache
	log := d.log

	task := func() {
		if err := cache.Put(ctx, key, clone); err != nil {
			log.Error("cache put", &logger.LogContext{Error: err, Data: map[string]any{"key": key.String()}})
		}
	}

	if d.cfg.Event != nil {
		d.cfg.Event.WaitUntil(task)
		return
	}
	task()
}
