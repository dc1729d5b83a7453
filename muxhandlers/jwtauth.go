package muxhandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/vitalvas/edgemux/mux"
)

var (
	// ErrNoJWTKey is returned when JWTAuthConfig.Key is empty.
	ErrNoJWTKey = errors.New("jwt auth: key must be set")

	// ErrMissingToken is signalled when the request carries no bearer token.
	ErrMissingToken = errors.New("jwt auth: missing token")

	// ErrInvalidToken is signalled when the token fails parsing or
	// validation.
	ErrInvalidToken = errors.New("jwt auth: invalid token")
)

// jwtClaimsKey is the Request local holding the validated claims.
const jwtClaimsKey = "muxhandlers.jwt_claims"

// JWTClaims returns the claims validated by JWTAuthMiddleware, or nil.
func JWTClaims(r *mux.Request) jwt.Claims {
	v, _ := r.Get(jwtClaimsKey)
	claims, _ := v.(jwt.Claims)
	return claims
}

// JWTAuthConfig configures the JWT Auth middleware behaviour.
type JWTAuthConfig struct {
	// Key is the HMAC key tokens are signed with. Required.
	Key []byte

	// NewClaims returns the claims value tokens are decoded into. Defaults
	// to jwt.MapClaims.
	NewClaims func() jwt.Claims

	// QueryParam, when set, is consulted when the Authorization header
	// carries no bearer token.
	QueryParam string
}

// JWTAuthMiddleware returns a middleware that validates HS256 bearer tokens.
// Failures are signalled as an *HTTPError with status 401 wrapping
// ErrMissingToken or ErrInvalidToken, leaving the response to the router's
// error handler.
//
// It returns ErrNoJWTKey if Key is empty.
func JWTAuthMiddleware(cfg JWTAuthConfig) (mux.MiddlewareFunc, error) {
	if len(cfg.Key) == 0 {
		return nil, ErrNoJWTKey
	}

	newClaims := cfg.NewClaims
	if newClaims == nil {
		newClaims = func() jwt.Claims { return jwt.MapClaims{} }
	}

	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	key := cfg.Key

	return func(r *mux.Request, _ *mux.Response, next mux.NextFunc) {
		raw := bearerToken(r.Header.Get("Authorization"))
		if raw == "" && cfg.QueryParam != "" {
			raw = r.Query.Get(cfg.QueryParam)
		}

		if raw == "" {
			next(NewHTTPError(http.StatusUnauthorized, ErrMissingToken))
			return
		}

		token, err := parser.ParseWithClaims(raw, newClaims(), func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil {
			next(NewHTTPError(http.StatusUnauthorized, fmt.Errorf("%w: %s", ErrInvalidToken, err)))
			return
		}

		r.Set(jwtClaimsKey, token.Claims)
		next(nil)
	}, nil
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
