package muxhandlers

import (
	"github.com/google/uuid"
	"github.com/vitalvas/edgemux/mux"
)

// requestIDKey is the Request local holding the request ID.
const requestIDKey = "muxhandlers.request_id"

// RequestIDFromRequest returns the request ID stored by RequestIDMiddleware.
// Returns an empty string if no ID is present.
func RequestIDFromRequest(r *mux.Request) string {
	return r.GetString(requestIDKey)
}

// RequestIDConfig configures the Request ID middleware behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to "X-Request-ID" when empty.
	HeaderName string

	// GenerateFunc is an optional callback that returns a new unique ID.
	// It receives the current request, allowing ID generation based on
	// request context. Defaults to GenerateUUIDv4.
	GenerateFunc func(r *mux.Request) string

	// TrustIncoming, when true, reuses an existing request ID from the
	// incoming request header instead of generating a new one.
	TrustIncoming bool
}

// RequestIDMiddleware returns a middleware that generates or propagates a
// request ID header. The ID is set on the request header, stored as a
// request local and set on the response.
func RequestIDMiddleware(cfg RequestIDConfig) mux.MiddlewareFunc {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	trustIncoming := cfg.TrustIncoming

	return func(r *mux.Request, w *mux.Response, next mux.NextFunc) {
		id := ""
		if trustIncoming {
			id = r.Header.Get(headerName)
		}

		if id == "" {
			id = generate(r)
		}

		if id != "" {
			r.Header.Set(headerName, id)
			r.Set(requestIDKey, id)
			w.SetHeader(headerName, id)
		}

		next(nil)
	}
}

// GenerateUUIDv4 returns a new UUID v4 string.
//
// Reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.4
func GenerateUUIDv4(_ *mux.Request) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a new UUID v7 string. UUIDs are time-ordered:
// IDs generated later sort lexicographically after earlier ones.
//
// Reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.7
func GenerateUUIDv7(_ *mux.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
