package muxhandlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/edgemux/mux"
)

func TestContentTypeCheckMiddleware(t *testing.T) {
	t.Run("requires allowed types", func(t *testing.T) {
		_, err := ContentTypeCheckMiddleware(ContentTypeCheckConfig{})
		assert.ErrorIs(t, err, ErrNoAllowedTypes)
	})

	mw, err := ContentTypeCheckMiddleware(ContentTypeCheckConfig{AllowedTypes: []string{"application/json"}})
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Use(mw)
	r.Post("/", okHandler)
	r.Get("/", okHandler)

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"allowed", http.MethodPost, "application/json", http.StatusOK},
		{"allowed with params", http.MethodPost, "Application/JSON; charset=utf-8", http.StatusOK},
		{"disallowed", http.MethodPost, "text/plain", http.StatusUnsupportedMediaType},
		{"missing", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"malformed", http.MethodPost, "/;;", http.StatusUnsupportedMediaType},
		{"unchecked method", http.MethodGet, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			res := serve(t, r, req)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			if tt.wantStatus == http.StatusUnsupportedMediaType {
				assert.Equal(t, "Unsupported Media Type", string(res.Body))
				assert.Equal(t, "no-store", res.Header.Get("Cache-Control"))
			}
		})
	}
}
