package muxhandlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/vitalvas/edgemux/mux"
)

// ClientIP returns the client address of r. X-Forwarded-For and X-Real-Ip
// are walked right to left and the first public address wins; otherwise the
// peer address is used.
//
// Any client can set those headers, so ClientIP only identifies clients
// when every request arrives through a proxy that overwrites them. Use
// RemoteIP otherwise.
func ClientIP(r *mux.Request) string {
	if ip := forwardedIP(r.Header); ip != "" {
		return ip
	}

	return RemoteIP(r)
}

// RemoteIP returns the host part of the peer address of r.
func RemoteIP(r *mux.Request) string {
	if r.Raw == nil {
		return ""
	}

	host, _, err := net.SplitHostPort(r.Raw.RemoteAddr)
	if err != nil {
		return r.Raw.RemoteAddr
	}

	return host
}

func forwardedIP(h http.Header) string {
	for _, name := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		addresses := strings.Split(h.Get(name), ",")
		// march from right to left until we get a public address
		// that will be the address right before our proxy.
		for i := len(addresses) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(addresses[i]))
			if ip == nil || !ip.IsGlobalUnicast() || ip.IsPrivate() {
				continue
			}
			return ip.String()
		}
	}

	return ""
}
