// Package muxhandlers provides middleware and an error handler for the mux
// dispatch pipeline.
//
// Every middleware is a mux.MiddlewareFunc. Rejections either halt the
// chain with the response already set (BasicAuthMiddleware,
// ContentTypeCheckMiddleware, RateLimitMiddleware, CORS preflight) or
// signal an *HTTPError through next for the router's error handler
// (JWTAuthMiddleware).
//
// # Basic Auth Middleware
//
// BasicAuthMiddleware implements HTTP Basic Authentication per RFC 7617.
// Credentials can be validated via a dynamic callback or a static map.
// Static credential comparison uses constant-time comparison to prevent
// timing attacks.
//
//	mw, err := muxhandlers.BasicAuthMiddleware(muxhandlers.BasicAuthConfig{
//	    Realm: "My App",
//	    Credentials: map[string]string{
//	        "admin": "secret",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Get("/admin", admin).Middleware(mw)
//
// # CORS Middleware
//
// CORSMiddleware implements the CORS protocol per the Fetch Standard. It
// registers an OPTIONS "*" route so preflight requests reach it.
//
//	mw, err := muxhandlers.CORSMiddleware(r, muxhandlers.CORSConfig{
//	    AllowedOrigins:   []string{"https://example.com"},
//	    AllowCredentials: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Use(mw)
//
// # Error Handler
//
// ErrorHandler answers errors with a JSON body:
//
//	r.Error(muxhandlers.ErrorHandler(muxhandlers.ErrorHandlerConfig{Logger: l}))
//
//	{"status":401,"error":"jwt auth: missing token","request_id":"..."}
package muxhandlers
