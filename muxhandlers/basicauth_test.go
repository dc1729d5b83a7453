package muxhandlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/edgemux/mux"
)

func TestBasicAuthMiddleware(t *testing.T) {
	t.Run("requires an auth source", func(t *testing.T) {
		_, err := BasicAuthMiddleware(BasicAuthConfig{})
		assert.ErrorIs(t, err, ErrNoAuthSource)
	})

	tests := []struct {
		name       string
		config     BasicAuthConfig
		user, pass string
		noAuth     bool
		wantStatus int
	}{
		{
			name:       "valid static credentials",
			config:     BasicAuthConfig{Credentials: map[string]string{"admin": "secret"}},
			user:       "admin",
			pass:       "secret",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong password",
			config:     BasicAuthConfig{Credentials: map[string]string{"admin": "secret"}},
			user:       "admin",
			pass:       "nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown user",
			config:     BasicAuthConfig{Credentials: map[string]string{"admin": "secret"}},
			user:       "root",
			pass:       "secret",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing header",
			config:     BasicAuthConfig{Credentials: map[string]string{"admin": "secret"}},
			noAuth:     true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "validate func wins",
			config: BasicAuthConfig{
				Credentials:  map[string]string{"admin": "secret"},
				ValidateFunc: func(u, p string) bool { return u == "dyn" && p == "pw" },
			},
			user:       "dyn",
			pass:       "pw",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := BasicAuthMiddleware(tt.config)
			require.NoError(t, err)

			var user string
			r := mux.NewRouter()
			r.Get("/", func(req *mux.Request, w *mux.Response) error {
				user = BasicAuthUser(req)
				w.Send("ok")
				return nil
			}).Middleware(mw)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}

			res := serve(t, r, req)
			assert.Equal(t, tt.wantStatus, res.StatusCode)

			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Restricted"`, res.Header.Get("WWW-Authenticate"))
				assert.Equal(t, "no-store", res.Header.Get("Cache-Control"))
				assert.Empty(t, res.Body)
				assert.Empty(t, user)
			} else {
				assert.Equal(t, tt.user, user)
				assert.Equal(t, "ok", string(res.Body))
			}
		})
	}
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, constantTimeEqual("a", "a"))
	assert.False(t, constantTimeEqual("a", "ab"))
	assert.False(t, constantTimeEqual("", "a"))
}
