package muxhandlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/edgemux/mux"
)

// ErrNoAuthSource is returned when BasicAuthConfig has neither ValidateFunc
// nor Credentials configured.
var ErrNoAuthSource = errors.New("basic auth: at least one of ValidateFunc or Credentials must be set")

// basicAuthUserKey is the Request local holding the authenticated username.
const basicAuthUserKey = "muxhandlers.basic_auth_user"

// BasicAuthUser returns the username authenticated by BasicAuthMiddleware.
func BasicAuthUser(r *mux.Request) string {
	return r.GetString(basicAuthUserKey)
}

// BasicAuthConfig configures the Basic Auth middleware behaviour.
//
// Reference: https://www.rfc-editor.org/rfc/rfc7617
type BasicAuthConfig struct {
	// Realm is the authentication realm sent in the WWW-Authenticate header.
	// Defaults to "Restricted" when empty.
	Realm string

	// ValidateFunc is called to validate credentials dynamically.
	// Takes priority over Credentials when both are set.
	ValidateFunc func(username, password string) bool

	// Credentials is a static map of username -> password pairs.
	// Compared using SHA-256 hashed constant-time comparison to prevent
	// timing attacks, including length-based leaks.
	Credentials map[string]string
}

// BasicAuthMiddleware returns a middleware that implements HTTP Basic
// Authentication per RFC 7617. It validates the Authorization header and
// halts with 401 Unauthorized when credentials are missing or invalid.
//
// It returns ErrNoAuthSource if both ValidateFunc and Credentials are nil/empty.
func BasicAuthMiddleware(cfg BasicAuthConfig) (mux.MiddlewareFunc, error) {
	if cfg.ValidateFunc == nil && len(cfg.Credentials) == 0 {
		return nil, ErrNoAuthSource
	}

	realm := cfg.Realm
	if realm == "" {
		realm = "Restricted"
	}

	wwwAuthenticate := fmt.Sprintf("Basic realm=%q", realm)

	validate := cfg.ValidateFunc
	credentials := cfg.Credentials

	return func(r *mux.Request, w *mux.Response, next mux.NextFunc) {
		username, password, ok := r.Raw.BasicAuth()
		if !ok {
			unauthorized(w, wwwAuthenticate)
			return
		}

		if validate != nil {
			if !validate(username, password) {
				unauthorized(w, wwwAuthenticate)
				return
			}
		} else {
			expectedPassword, exists := credentials[username]
			// Always perform the password comparison to prevent timing
			// leaks that reveal whether a username exists in the map.
			passwordMatch := constantTimeEqual(password, expectedPassword)
			if !exists || !passwordMatch {
				unauthorized(w, wwwAuthenticate)
				return
			}
		}

		r.Set(basicAuthUserKey, username)
		next(nil)
	}, nil
}

// constantTimeEqual compares two strings in constant time by first hashing
// them with SHA-256.
func constantTimeEqual(a, b string) bool {
	aHash := sha256.Sum256([]byte(a))
	bHash := sha256.Sum256([]byte(b))

	return subtle.ConstantTimeCompare(aHash[:], bHash[:]) == 1
}

// unauthorized sets an uncacheable 401 response with the WWW-Authenticate
// header and an empty body.
func unauthorized(w *mux.Response, wwwAuthenticate string) {
	noStore(w).
		SetHeader("WWW-Authenticate", wwwAuthenticate).
		Status(http.StatusUnauthorized).
		Send("")
}
