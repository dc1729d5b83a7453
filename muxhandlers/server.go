package muxhandlers

import (
	"fmt"
	"os"

	"github.com/vitalvas/edgemux/mux"
)

const hostnameLocal = "muxhandlers.server.hostname"

// ServerConfig identifies the instance answering a request.
type ServerConfig struct {
	// Name, when set, is sent as the Server header.
	Name string

	// Hostname is sent as X-Server-Hostname. When empty, the first
	// non-empty variable of HostnameEnv is used, then os.Hostname.
	Hostname    string
	HostnameEnv []string
}

// ServerMiddleware tags responses with the serving instance. The hostname
// is also stored as a request local for ServerHostname. Responses served
// from the cache keep the tags of the instance that produced them.
func ServerMiddleware(cfg ServerConfig) (mux.MiddlewareFunc, error) {
	hostname, err := resolveHostname(cfg)
	if err != nil {
		return nil, err
	}

	return func(r *mux.Request, w *mux.Response, next mux.NextFunc) {
		r.Set(hostnameLocal, hostname)

		w.SetHeader("X-Server-Hostname", hostname)
		if cfg.Name != "" {
			w.SetHeader("Server", cfg.Name)
		}

		next(nil)
	}, nil
}

// ServerHostname returns the hostname ServerMiddleware resolved, or "".
func ServerHostname(r *mux.Request) string {
	return r.GetString(hostnameLocal)
}

func resolveHostname(cfg ServerConfig) (string, error) {
	if cfg.Hostname != "" {
		return cfg.Hostname, nil
	}

	for _, name := range cfg.HostnameEnv {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}

	h, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("server: resolve hostname: %w", err)
	}

	return h, nil
}
