package mux

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// NotFoundBody is the body of the fixed 404 response and the body a
// Response holds after Reset.
const NotFoundBody = "Route does not exist"

// Redirect records a redirect intent on a Response.
type Redirect struct {
	URL        string
	StatusCode int
}

// Response accumulates the response for a single dispatch. Every mutating
// method returns the Response so calls can be chained:
//
//	w.Status(http.StatusCreated).SetHeader("X-Id", id).JSON(user)
//
// Errors from invalid headers or JSON encoding are recorded and surface
// through the router's error handler once the handler returns.
type Response struct {
	body     string
	status   int
	header   http.Header
	redirect *Redirect
	err      error
}

func newResponse() *Response {
	w := new(Response)
	w.Reset()
	return w
}

// Reset restores the baseline state: body NotFoundBody, status 200, a
// Content-Encoding: gzip header and no redirect.
func (w *Response) Reset() *Response {
	w.body = NotFoundBody
	w.status = http.StatusOK
	w.header = http.Header{"Content-Encoding": []string{"gzip"}}
	w.redirect = nil
	w.err = nil
	return w
}

// Status sets the status code.
func (w *Response) Status(code int) *Response {
	w.status = code
	return w
}

// JSON sets Content-Type to application/json and the body to v encoded as
// JSON.
func (w *Response) JSON(v any) *Response {
	b, err := json.Marshal(v)
	if err != nil {
		w.fail(fmt.Errorf("mux: encode json: %w", err))
		return w
	}

	w.header.Set("Content-Type", "application/json")
	w.body = string(b)
	return w
}

// Send sets the body.
func (w *Response) Send(body string) *Response {
	w.body = body
	return w
}

// End finishes the response. With a non-empty argument it replaces the
// body, otherwise the existing body is kept.
func (w *Response) End(body ...string) *Response {
	if len(body) > 0 && body[0] != "" {
		w.body = body[0]
	}
	return w
}

// Render sets Content-Type to text/html and the body to html.
func (w *Response) Render(html string) *Response {
	w.header.Set("Content-Type", "text/html; charset=utf-8")
	w.body = html
	return w
}

// SetHeader sets a header, replacing existing values.
func (w *Response) SetHeader(name, value string) *Response {
	if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
		w.fail(fmt.Errorf("%w: %q", ErrInvalidHeader, name))
		return w
	}

	w.header.Set(name, value)
	return w
}

// AddHeader appends a header value.
func (w *Response) AddHeader(name, value string) *Response {
	if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
		w.fail(fmt.Errorf("%w: %q", ErrInvalidHeader, name))
		return w
	}

	w.header.Add(name, value)
	return w
}

// Header returns the first value of the named header.
func (w *Response) Header(name string) string {
	return w.header.Get(name)
}

// RemoveHeader deletes the named header.
func (w *Response) RemoveHeader(name string) *Response {
	w.header.Del(name)
	return w
}

// CookieOption configures a cookie set with SetCookie.
type CookieOption func(*http.Cookie)

// CookiePath sets the cookie Path attribute.
func CookiePath(path string) CookieOption {
	return func(c *http.Cookie) { c.Path = path }
}

// CookieDomain sets the cookie Domain attribute.
func CookieDomain(domain string) CookieOption {
	return func(c *http.Cookie) { c.Domain = domain }
}

// CookieMaxAge sets the cookie Max-Age attribute in seconds.
func CookieMaxAge(seconds int) CookieOption {
	return func(c *http.Cookie) { c.MaxAge = seconds }
}

// CookieExpires sets the cookie Expires attribute.
func CookieExpires(t time.Time) CookieOption {
	return func(c *http.Cookie) { c.Expires = t }
}

// CookieSecure sets the Secure attribute.
func CookieSecure() CookieOption {
	return func(c *http.Cookie) { c.Secure = true }
}

// CookieHTTPOnly sets the HttpOnly attribute.
func CookieHTTPOnly() CookieOption {
	return func(c *http.Cookie) { c.HttpOnly = true }
}

// CookieSameSite sets the SameSite attribute.
func CookieSameSite(mode http.SameSite) CookieOption {
	return func(c *http.Cookie) { c.SameSite = mode }
}

// SetCookie adds a Set-Cookie header. A cookie already set with the same
// name is replaced.
func (w *Response) SetCookie(name, value string, opts ...CookieOption) *Response {
	c := &http.Cookie{Name: name, Value: value}
	for _, opt := range opts {
		opt(c)
	}

	line := c.String()
	if line == "" {
		w.fail(fmt.Errorf("%w: cookie %q", ErrInvalidHeader, name))
		return w
	}

	prefix := name + "="
	var kept []string
	for _, v := range w.header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}

	w.header["Set-Cookie"] = append(kept, line)
	return w
}

// Redirect records a redirect to url. Once set, the response is sent as a
// redirect and the body is ignored. A zero code means 302.
func (w *Response) Redirect(url string, code int) *Response {
	if code == 0 {
		code = http.StatusFound
	}

	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		w.fail(fmt.Errorf("%w: %d", ErrInvalidRedirect, code))
		return w
	}

	w.redirect = &Redirect{URL: url, StatusCode: code}
	return w
}

// StatusCode returns the current status code.
func (w *Response) StatusCode() int { return w.status }

// Body returns the current body.
func (w *Response) Body() string { return w.body }

// RedirectTarget returns the recorded redirect, or nil.
func (w *Response) RedirectTarget() *Redirect { return w.redirect }

// Err returns the first error recorded by a mutating method.
func (w *Response) Err() error { return w.err }

func (w *Response) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// result materializes the accumulated state. A redirect produces a
// body-less response carrying Location and the accumulated headers minus
// the content headers.
func (w *Response) result() *Result {
	header := w.header.Clone()

	if w.redirect != nil {
		header.Del("Content-Encoding")
		header.Del("Content-Type")
		header.Set("Location", w.redirect.URL)

		return &Result{
			StatusCode: w.redirect.StatusCode,
			Header:     header,
		}
	}

	return &Result{
		StatusCode: w.status,
		Header:     header,
		Body:       []byte(w.body),
	}
}

// Result is a materialized, protocol-level response.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Clone returns a deep copy of res.
func (res *Result) Clone() *Result {
	out := &Result{
		StatusCode: res.StatusCode,
		Header:     res.Header.Clone(),
	}

	if res.Body != nil {
		out.Body = make([]byte, len(res.Body))
		copy(out.Body, res.Body)
	}

	return out
}

// IsRedirect reports whether res is a redirect.
func (res *Result) IsRedirect() bool {
	return res.Header.Get("Location") != "" && res.StatusCode >= 300 && res.StatusCode < 400
}

// notFoundResult is the fixed response for unmatched routes.
func notFoundResult() *Result {
	return &Result{
		StatusCode: http.StatusNotFound,
		Header:     http.Header{"Content-Encoding": []string{"gzip"}},
		Body:       []byte(NotFoundBody),
	}
}

// NewRedirect returns a body-less redirect result to url. A zero code
// means 302.
func NewRedirect(url string, code int) *Result {
	if code == 0 {
		code = http.StatusFound
	}

	return &Result{
		StatusCode: code,
		Header:     http.Header{"Location": []string{url}},
	}
}

// errorResult is the response for errors nothing resolved.
func errorResult() *Result {
	return &Result{
		StatusCode: http.StatusInternalServerError,
		Header: http.Header{
			"Cache-Control": []string{cacheControlValue(0, false)},
			"Content-Type":  []string{"text/plain; charset=utf-8"},
		},
		Body: []byte(http.StatusText(http.StatusInternalServerError)),
	}
}
