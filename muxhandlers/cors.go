package muxhandlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/vitalvas/edgemux/mux"
)

// ErrWildcardCredentials is returned when AllowedOrigins contains "*" and
// AllowCredentials is true. Use AllowOriginFunc for dynamic origin checks
// with credentials.
var ErrWildcardCredentials = errors.New("wildcard origin \"*\" cannot be used with AllowCredentials; use AllowOriginFunc instead")

// CORSConfig configures the CORS middleware behaviour.
//
// References:
//   - CORS protocol: https://fetch.spec.whatwg.org/#http-cors-protocol
//   - Web Origin:    https://www.rfc-editor.org/rfc/rfc6454
//   - HTTP Vary:     https://www.rfc-editor.org/rfc/rfc9110#field.vary
type CORSConfig struct {
	// AllowedOrigins is a list of exact origin strings, "*" for wildcard,
	// or subdomain wildcard patterns like "https://*.example.com".
	AllowedOrigins []string

	// AllowOriginFunc is an optional dynamic callback invoked when the
	// origin does not match any entry in AllowedOrigins. Return true to allow.
	AllowOriginFunc func(origin string) bool

	// AllowedMethods overrides the set of methods advertised in preflight
	// and actual responses. When empty the middleware discovers the methods
	// registered for the request path.
	AllowedMethods []string

	// AllowedHeaders lists the headers the client may send in the actual
	// request. When empty the middleware reflects the Access-Control-Request-Headers
	// value from the preflight request. Use "*" to reflect all requested headers.
	AllowedHeaders []string

	// ExposeHeaders lists the headers the browser may expose to client code.
	ExposeHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials: true.
	AllowCredentials bool

	// MaxAge is the duration in seconds a preflight result may be cached.
	// Positive values are sent as-is, negative values emit "0", zero omits the header.
	MaxAge int

	// OptionsStatusCode overrides the HTTP status code for preflight responses.
	// When zero (default) the middleware uses 204 No Content.
	OptionsStatusCode int

	// OptionsPassthrough, when true, sets CORS headers on preflight but
	// lets the chain continue to the route handler.
	OptionsPassthrough bool
}

// originPattern represents a subdomain wildcard pattern split at the "*".
type originPattern struct {
	prefix string
	suffix string
}

func (c *CORSConfig) hasWildcardOrigin() bool {
	return slices.Contains(c.AllowedOrigins, "*")
}

// setCORSOriginHeaders sets Access-Control-Allow-Origin, Vary, and
// Access-Control-Allow-Credentials on the response.
func setCORSOriginHeaders(w *mux.Response, cfg *CORSConfig, origin string) {
	if cfg.hasWildcardOrigin() && !cfg.AllowCredentials {
		w.SetHeader("Access-Control-Allow-Origin", "*")
	} else {
		w.SetHeader("Access-Control-Allow-Origin", origin)
		w.AddHeader("Vary", "Origin")
	}

	if cfg.AllowCredentials {
		w.SetHeader("Access-Control-Allow-Credentials", "true")
	}
}

// parseOrigins normalizes AllowedOrigins to lowercase and splits them into
// exact matches and wildcard patterns.
func parseOrigins(origins []string) ([]string, []originPattern, error) {
	var exact []string
	var patterns []originPattern

	for _, o := range origins {
		if o == "*" {
			exact = append(exact, o)
			continue
		}

		lower := strings.ToLower(o)

		if prefix, suffix, ok := strings.Cut(lower, "*"); ok {
			if strings.Contains(suffix, "*") {
				return nil, nil, errors.New("origin pattern contains multiple wildcards: " + o)
			}

			patterns = append(patterns, originPattern{prefix: prefix, suffix: suffix})
		} else {
			exact = append(exact, lower)
		}
	}

	return exact, patterns, nil
}

func matchOrigin(originLower string, exactOrigins []string, patterns []originPattern) bool {
	for _, o := range exactOrigins {
		if o == "*" || o == originLower {
			return true
		}
	}

	for _, wp := range patterns {
		if len(originLower) >= len(wp.prefix)+len(wp.suffix) &&
			strings.HasPrefix(originLower, wp.prefix) &&
			strings.HasSuffix(originLower, wp.suffix) {
			return true
		}
	}

	return false
}

// CORSMiddleware returns a middleware that implements the CORS protocol
// per the Fetch Standard. It validates the Origin header (RFC 6454),
// answers preflight OPTIONS requests and sets the response headers.
//
// Middleware only runs for matched routes, so CORSMiddleware registers an
// OPTIONS "*" route on r to let preflight requests for any path reach it.
// OPTIONS routes registered on r still take priority.
func CORSMiddleware(r *mux.Router, cfg CORSConfig) (mux.MiddlewareFunc, error) {
	if cfg.hasWildcardOrigin() && cfg.AllowCredentials {
		return nil, ErrWildcardCredentials
	}

	exactOrigins, patterns, err := parseOrigins(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	isAllowed := func(originLower, rawOrigin string) bool {
		if matchOrigin(originLower, exactOrigins, patterns) {
			return true
		}

		if cfg.AllowOriginFunc != nil {
			return cfg.AllowOriginFunc(rawOrigin)
		}

		return false
	}

	hasSpecificOrigins := !cfg.hasWildcardOrigin() &&
		(len(exactOrigins) > 0 || len(patterns) > 0 || cfg.AllowOriginFunc != nil)

	headersWildcard := slices.Contains(cfg.AllowedHeaders, "*")

	preflightStatus := cfg.OptionsStatusCode
	if preflightStatus == 0 {
		preflightStatus = http.StatusNoContent
	}

	preflightRoute := r.Options("*", func(_ *mux.Request, w *mux.Response) error {
		noStore(w).Status(preflightStatus).Send("")
		return nil
	})

	methodsFor := func(path string) []string {
		if len(cfg.AllowedMethods) > 0 {
			return cfg.AllowedMethods
		}
		return routeMethods(r, path, preflightRoute)
	}

	return func(req *mux.Request, w *mux.Response, next mux.NextFunc) {
		rawOrigin := req.Header.Get("Origin")

		if rawOrigin == "" {
			if hasSpecificOrigins {
				w.AddHeader("Vary", "Origin")
			}

			next(nil)
			return
		}

		if !isAllowed(strings.ToLower(rawOrigin), rawOrigin) {
			next(nil)
			return
		}

		setCORSOriginHeaders(w, &cfg, rawOrigin)

		if methods := methodsFor(req.URL.Path); len(methods) > 0 {
			w.SetHeader("Access-Control-Allow-Methods", strings.Join(methods, ","))
		}

		if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
			setPreflightHeaders(w, req, &cfg, headersWildcard)

			if cfg.OptionsPassthrough {
				next(nil)
				return
			}

			noStore(w).Status(preflightStatus).Send("")
			return
		}

		if len(cfg.ExposeHeaders) > 0 {
			w.SetHeader("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
		}

		next(nil)
	}, nil
}

func setPreflightHeaders(w *mux.Response, req *mux.Request, cfg *CORSConfig, headersWildcard bool) {
	reqHeaders := req.Header.Get("Access-Control-Request-Headers")

	switch {
	case headersWildcard && reqHeaders != "":
		w.SetHeader("Access-Control-Allow-Headers", reqHeaders)
	case !headersWildcard && len(cfg.AllowedHeaders) > 0:
		w.SetHeader("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ","))
	case !headersWildcard && reqHeaders != "":
		w.SetHeader("Access-Control-Allow-Headers", reqHeaders)
	}

	if cfg.MaxAge > 0 {
		w.SetHeader("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	} else if cfg.MaxAge < 0 {
		w.SetHeader("Access-Control-Max-Age", "0")
	}

	w.AddHeader("Vary", "Access-Control-Request-Method")
	w.AddHeader("Vary", "Access-Control-Request-Headers")
}

// corsMethods are the methods probed when discovering the methods
// registered for a path.
var corsMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// routeMethods returns the methods with a method-specific route matching
// path, ignoring skip.
func routeMethods(r *mux.Router, path string, skip *mux.Route) []string {
	var methods []string
	for _, method := range corsMethods {
		m := r.Match(method, path)
		if !m.Matched || m.Route == skip || m.Route.Method() == "ALL" {
			continue
		}
		methods = append(methods, method)
	}

	return methods
}
