package muxhandlers

import (
	"errors"
	"net/http"

	"github.com/vitalvas/edgemux/codec"
	"github.com/vitalvas/edgemux/logger"
	"github.com/vitalvas/edgemux/mux"
)

// HTTPError is an error carrying the status code it should be answered
// with.
type HTTPError struct {
	Status int
	Err    error
}

// NewHTTPError returns an *HTTPError. A nil err is replaced by one holding
// the status text.
func NewHTTPError(status int, err error) *HTTPError {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	return &HTTPError{Status: status, Err: err}
}

func (e *HTTPError) Error() string { return e.Err.Error() }

func (e *HTTPError) Unwrap() error { return e.Err }

// ErrorHandlerConfig configures the JSON error handler.
type ErrorHandlerConfig struct {
	// Logger receives 5xx errors at Error level and 4xx errors at Debug
	// level. Defaults to a discarding logger.
	Logger logger.Logger

	// ExposeInternal includes the error text of 5xx errors in the response
	// body. By default the status text is sent.
	ExposeInternal bool
}

// errorBody is the JSON error response.
type errorBody struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler returns a mux.ErrorHandlerFunc that answers errors with a
// JSON body and the status derived by StatusOf. The response is never
// cacheable and the chain is not resumed.
func ErrorHandler(cfg ErrorHandlerConfig) mux.ErrorHandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	return func(err error, r *mux.Request, w *mux.Response, _ mux.NextFunc) {
		status := StatusOf(err)

		msg := err.Error()
		if status >= http.StatusInternalServerError {
			log.Error("request failed", &logger.LogContext{Error: err, Request: r.Raw})
			if !cfg.ExposeInternal {
				msg = http.StatusText(status)
			}
		} else {
			log.Debug("request rejected", &logger.LogContext{Error: err, Request: r.Raw})
		}

		w.RemoveHeader("Content-Encoding").
			SetHeader("Cache-Control", "max-age=0").
			Status(status).
			JSON(errorBody{Status: status, Error: msg, RequestID: RequestIDFromRequest(r)})
	}
}

// StatusOf maps err to a status code: *HTTPError carries its own,
// malformed bodies are 400, oversized bodies 413, everything else 500.
func StatusOf(err error) int {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.Is(err, codec.ErrMalformedBody):
		return http.StatusBadRequest
	case errors.Is(err, codec.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// noStore marks a response written by a halting middleware as
// uncacheable. Without it the route's max-age would let a rejection be
// served to other clients from the response cache.
func noStore(w *mux.Response) *mux.Response {
	return w.SetHeader("Cache-Control", "no-store")
}
