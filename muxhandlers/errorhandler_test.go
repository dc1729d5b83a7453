package muxhandlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalvas/edgemux/codec"
	"github.com/vitalvas/edgemux/logger"
	"github.com/vitalvas/edgemux/mux"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"http error", NewHTTPError(http.StatusForbidden, nil), http.StatusForbidden},
		{"wrapped http error", fmt.Errorf("outer: %w", NewHTTPError(http.StatusConflict, errors.New("dup"))), http.StatusConflict},
		{"malformed body", fmt.Errorf("%w: bad json", codec.ErrMalformedBody), http.StatusBadRequest},
		{"body too large", codec.ErrBodyTooLarge, http.StatusRequestEntityTooLarge},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestHTTPError(t *testing.T) {
	err := NewHTTPError(http.StatusNotFound, nil)
	assert.Equal(t, "Not Found", err.Error())

	inner := errors.New("inner")
	err = NewHTTPError(http.StatusBadRequest, inner)
	assert.ErrorIs(t, err, inner)
}

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("SENTRY_DSN", "")
	l := logger.NewLogger(logger.WithLogger(log.New(&buf, "", 0)), logger.WithLevel(logger.LogLevelDebug))

	newRouter := func(cfg ErrorHandlerConfig, err error) *mux.Router {
		r := mux.NewRouter()
		r.Use(RequestIDMiddleware(RequestIDConfig{GenerateFunc: func(_ *mux.Request) string { return "rid-1" }}))
		r.Error(ErrorHandler(cfg))
		r.Get("/", func(_ *mux.Request, _ *mux.Response) error { return err })
		r.Post("/", okHandler)
		return r
	}

	t.Run("client error", func(t *testing.T) {
		buf.Reset()
		r := newRouter(ErrorHandlerConfig{Logger: l}, NewHTTPError(http.StatusForbidden, errors.New("nope")))

		res := serve(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.JSONEq(t, `{"status":403,"error":"nope","request_id":"rid-1"}`, string(res.Body))
		assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
		assert.Equal(t, "max-age=0", res.Header.Get("Cache-Control"))
		assert.Empty(t, res.Header.Get("Content-Encoding"))
		assert.Contains(t, buf.String(), "[DEBUG]")
	})

	t.Run("internal error hidden", func(t *testing.T) {
		buf.Reset()
		r := newRouter(ErrorHandlerConfig{Logger: l}, errors.New("db password leaked"))

		res := serve(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.JSONEq(t, `{"status":500,"error":"Internal Server Error","request_id":"rid-1"}`, string(res.Body))
		assert.Contains(t, buf.String(), "[ERROR]")
	})

	t.Run("internal error exposed", func(t *testing.T) {
		r := newRouter(ErrorHandlerConfig{ExposeInternal: true}, errors.New("boom"))

		res := serve(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.JSONEq(t, `{"status":500,"error":"boom","request_id":"rid-1"}`, string(res.Body))
	})

	t.Run("malformed body", func(t *testing.T) {
		r := newRouter(ErrorHandlerConfig{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":`))
		req.Header.Set("Content-Type", "application/json")

		res := serve(t, r, req)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}
