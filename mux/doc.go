// Package mux implements the request-routing and middleware-dispatch layer
// for edge-style HTTP handlers.
//
// A dispatch accepts an incoming *http.Request, matches it against a route
// table, runs a middleware chain, invokes the terminal handler, optionally
// serves or populates a response cache and returns a materialized Result.
// The package never touches sockets; package host adapts it to net/http.
//
// # Router
//
// Create a router and register handlers:
//
//	r := mux.NewRouter()
//	r.Get("/users/:id", func(req *mux.Request, w *mux.Response) error {
//		w.JSON(map[string]string{"id": req.Param("id")})
//		return nil
//	})
//	r.Get("/cache", cached).CacheTime(4000)
//	r.All("*", fallback)
//
// Patterns are exact paths, paths with ":name" segments, or the wildcard
// "*" ("/*" is normalized to "*"). For a given method table an exact match
// wins, then the first parameterized pattern in registration order, then
// the wildcard. HEAD requests use the GET table. When the method table has
// no match, routes registered with All are tried.
//
// # Middleware
//
// Middleware receives the request, the response accumulator and a next
// function:
//
//	r.Use(func(req *mux.Request, w *mux.Response, next mux.NextFunc) {
//		if req.Header.Get("X-Token") == "" {
//			next(errUnauthorized)
//			return
//		}
//		next(nil)
//	})
//
// Global middleware runs in registration order; a route-scoped middleware
// set with Route.Middleware runs last. Returning without calling next
// halts the chain and the accumulated response is sent. next(err) hands the
// error to the handler set with Router.Error, which may write a response
// and return, or call next(nil) to let the route handler run.
//
// Errors nothing resolves, including errors raised by the error handler
// itself, produce a 500 response.
//
// # Response
//
// Every dispatch gets a fresh Response reset to status 200, the body
// "Route does not exist" and a Content-Encoding: gzip header. The
// Cache-Control header is set to max-age=N with N the route cache time or
// the dispatch default. Redirects take precedence over the body.
//
// # Dispatch
//
// HandleRequest runs a single dispatch:
//
//	res, err := mux.HandleRequest(ctx, mux.Config{
//		Request:   req,
//		Router:    r,
//		CacheTime: 60,
//		Cache:     cache.NewMemory(),
//	})
//
// GET responses with a positive cache time are looked up in Config.Cache
// once the chain completes and written back through Event.WaitUntil.
package mux
