package mux

import "errors"

var (
	// ErrNoRequest is returned by HandleRequest when neither Config.Request
	// nor Config.Event supplies a request.
	ErrNoRequest = errors.New("mux: no request supplied")

	// ErrNoRouter is returned by HandleRequest when Config.Router is nil.
	ErrNoRouter = errors.New("mux: no router supplied")

	// ErrInvalidHeader is recorded on a Response when a header name or value
	// is not valid per RFC 7230 Section 3.2.
	ErrInvalidHeader = errors.New("mux: invalid header")

	// ErrInvalidRedirect is recorded on a Response when Redirect receives a
	// status code outside 301, 302, 303, 307 and 308.
	ErrInvalidRedirect = errors.New("mux: invalid redirect status")

	// ErrUnhandled wraps errors that reached the end of the pipeline with no
	// error handler able to resolve them.
	ErrUnhandled = errors.New("mux: unhandled error")
)
