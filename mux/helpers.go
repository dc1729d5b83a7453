package mux

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// cleanPattern normalizes a registration pattern: "/*" becomes "*" and
// relative patterns gain a leading slash.
func cleanPattern(p string) string {
	if p == "/*" {
		return wildcardPattern
	}

	if p != wildcardPattern && !strings.HasPrefix(p, "/") {
		return "/" + p
	}

	return p
}

// trimTrailingSlash removes a single trailing slash.
func trimTrailingSlash(p string) string {
	return strings.TrimSuffix(p, "/")
}

// requestURL returns the absolute URL of req. Server-side requests carry
// only the path in req.URL, so scheme and host are taken from the
// connection state and Host header.
func requestURL(req *http.Request) *url.URL {
	u := *req.URL

	if u.Host == "" {
		u.Host = req.Host
	}

	if u.Scheme == "" {
		u.Scheme = "http"
		if req.TLS != nil {
			u.Scheme = "https"
		}
	}

	return &u
}

// originOf returns scheme://host for u.
func originOf(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// cacheControlValue formats the Cache-Control header for a resolved cache
// time in seconds.
func cacheControlValue(seconds int, shared bool) string {
	if shared {
		return fmt.Sprintf("max-age=%d, s-maxage=%d", seconds, seconds)
	}

	return fmt.Sprintf("max-age=%d", seconds)
}

// parseCookies decodes the Cookie header into a map. The first occurrence
// of a name wins.
func parseCookies(req *http.Request) map[string]string {
	cookies := make(map[string]string)
	for _, c := range req.Cookies() {
		if _, exists := cookies[c.Name]; !exists {
			cookies[c.Name] = c.Value
		}
	}

	return cookies
}
