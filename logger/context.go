package logger

import (
	"encoding"
	"encoding/json"
	"net/http"
)

var _ encoding.TextMarshaler = LogContext{}

// A LogContext carries what a log message cannot say tersely.
type LogContext struct {
	// Data is free-form information about the event.
	Data map[string]any

	// Error is the error being reported, if any.
	Error error

	// Request is the request being dispatched. Only its method, URL and
	// scrubbed headers are logged; the body is never read.
	Request *http.Request
}

type logContextJSON struct {
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Request *requestJSON   `json:"request,omitempty"`
}

type requestJSON struct {
	Method string      `json:"method"`
	URL    string      `json:"url,omitempty"`
	Header http.Header `json:"header,omitempty"`
}

// MarshalText renders lc as JSON, leaving out empty fields.
func (lc LogContext) MarshalText() ([]byte, error) {
	out := logContextJSON{Data: lc.Data}
	if lc.Error != nil {
		out.Error = lc.Error.Error()
	}

	if r := lc.Request; r != nil {
		out.Request = &requestJSON{Method: r.Method, Header: scrubHeader(r.Header)}
		if r.URL != nil {
			out.Request.URL = r.URL.String()
		}
	}

	return json.Marshal(out)
}

func (lc LogContext) String() string {
	b, err := lc.MarshalText()
	if err != nil {
		return ""
	}
	return string(b)
}

// scrubHeader returns a copy of h with credentials masked, or nil for an
// empty h.
func scrubHeader(h http.Header) http.Header {
	if len(h) == 0 {
		return nil
	}

	out := h.Clone()
	for _, name := range []string{"Authorization", "Cookie", "Proxy-Authorization"} {
		if out.Get(name) != "" {
			out.Set(name, "xxxxxx")
		}
	}
	return out
}
