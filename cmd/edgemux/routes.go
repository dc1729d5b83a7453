package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vitalvas/edgemux/config"
	"github.com/vitalvas/edgemux/logger"
	"github.com/vitalvas/edgemux/mux"
	"github.com/vitalvas/edgemux/muxhandlers"
)

var errDemoFailure = errors.New("failed")

// newRouter registers the demo routes and the global middleware chain.
func newRouter(cfg *config.Config, log logger.Logger) (*mux.Router, error) {
	r := mux.NewRouter()

	requestID := muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
		GenerateFunc:  muxhandlers.GenerateUUIDv7,
		TrustIncoming: true,
	})

	security, err := muxhandlers.SecurityHeadersMiddleware(muxhandlers.SecurityHeadersConfig{})
	if err != nil {
		return nil, err
	}

	server, err := muxhandlers.ServerMiddleware(muxhandlers.ServerConfig{
		Name:        "edgemux",
		HostnameEnv: []string{"POD_NAME", "HOSTNAME"},
	})
	if err != nil {
		return nil, err
	}

	cors, err := muxhandlers.CORSMiddleware(r, muxhandlers.CORSConfig{AllowedOrigins: []string{"*"}})
	if err != nil {
		return nil, err
	}

	r.Use(requestID, security, server, cors)

	if cfg.RateLimit.Rate > 0 {
		limit, err := muxhandlers.RateLimitMiddleware(muxhandlers.RateLimitConfig{
			Rate:           cfg.RateLimit.Rate,
			Burst:          cfg.RateLimit.Burst,
			TrustForwarded: cfg.TrustProxy,
		})
		if err != nil {
			return nil, err
		}

		r.Use(limit)
	}

	r.Error(muxhandlers.ErrorHandler(muxhandlers.ErrorHandlerConfig{
		Logger:         log,
		ExposeInternal: !cfg.Environment.IsProduction(),
	}))

	r.Get("/", func(_ *mux.Request, w *mux.Response) error {
		w.Send("Works!")
		return nil
	})

	r.Get("/json", func(req *mux.Request, w *mux.Response) error {
		w.JSON(map[string]any{"worked": true, "host": muxhandlers.ServerHostname(req)})
		return nil
	})

	r.Get("/test/:id/:name", func(req *mux.Request, w *mux.Response) error {
		w.JSON(map[string]string{"id": req.Param("id"), "name": req.Param("name")})
		return nil
	})

	r.Get("/test", func(req *mux.Request, w *mux.Response) error {
		w.JSON(map[string]string{"id": req.Query.Get("id"), "name": req.Query.Get("name")})
		return nil
	})

	r.Get("/cache", func(req *mux.Request, w *mux.Response) error {
		w.JSON(map[string]any{"success": true, "request_id": muxhandlers.RequestIDFromRequest(req)})
		return nil
	}).CacheTime(4000)

	r.Get("/error", func(_ *mux.Request, w *mux.Response) error {
		w.JSON(map[string]bool{"success": true})
		return nil
	}).Middleware(func(_ *mux.Request, _ *mux.Response, next mux.NextFunc) {
		next(muxhandlers.NewHTTPError(http.StatusBadRequest, errDemoFailure))
	})

	echo := func(req *mux.Request, w *mux.Response) error {
		w.JSON(map[string]any{"body": req.BodyContent})
		return nil
	}

	jsonOnly, err := muxhandlers.ContentTypeCheckMiddleware(muxhandlers.ContentTypeCheckConfig{
		AllowedTypes: []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data", "text/plain"},
	})
	if err != nil {
		return nil, err
	}

	r.Post("/post", echo).Middleware(jsonOnly)
	r.Put("/put", echo).Middleware(jsonOnly)

	r.Delete("/delete", func(_ *mux.Request, w *mux.Response) error {
		w.JSON(map[string]bool{"success": true})
		return nil
	})

	r.Patch("/patch", func(_ *mux.Request, w *mux.Response) error {
		w.JSON(map[string]bool{"success": true})
		return nil
	})

	r.Get("/get-cookies", func(req *mux.Request, w *mux.Response) error {
		w.JSON(req.Cookies)
		return nil
	})

	r.Get("/set-cookies", func(_ *mux.Request, w *mux.Response) error {
		w.SetCookie("cookie1", "value1", mux.CookiePath("/"), mux.CookieHTTPOnly()).
			SetCookie("cookie2", "value2", mux.CookieMaxAge(3600), mux.CookieSameSite(http.SameSiteLaxMode)).
			JSON(map[string]bool{"success": true})
		return nil
	})

	r.Get("/redirect", func(req *mux.Request, w *mux.Response) error {
		to := req.Query.Get("to")
		if to == "" || !strings.HasPrefix(to, "/") {
			to = "/"
		}

		w.Redirect(req.Origin+to, http.StatusFound)
		return nil
	})

	if err := registerAuthRoutes(r, cfg); err != nil {
		return nil, err
	}

	r.All("*", func(req *mux.Request, w *mux.Response) error {
		w.Status(http.StatusNotFound).JSON(map[string]string{"error": "no route for " + req.Method + " " + req.URL.Path})
		return nil
	})

	return r, nil
}

// registerAuthRoutes adds the routes guarded by basic auth and, when a
// secret is configured, by JWT bearer tokens.
func registerAuthRoutes(r *mux.Router, cfg *config.Config) error {
	basic, err := muxhandlers.BasicAuthMiddleware(muxhandlers.BasicAuthConfig{
		Realm: "edgemux",
		Credentials: map[string]string{
			config.EnvVarOrString("EDGEMUX_ADMIN_USER", "admin"): config.EnvVarOrString("EDGEMUX_ADMIN_PASSWORD", "admin"),
		},
	})
	if err != nil {
		return err
	}

	r.Get("/admin", func(req *mux.Request, w *mux.Response) error {
		w.JSON(map[string]string{"user": muxhandlers.BasicAuthUser(req)})
		return nil
	}).Middleware(basic).CacheTime(0)

	if cfg.JWTSecret == "" {
		return nil
	}

	bearer, err := muxhandlers.JWTAuthMiddleware(muxhandlers.JWTAuthConfig{Key: []byte(cfg.JWTSecret)})
	if err != nil {
		return err
	}

	r.Get("/me", func(req *mux.Request, w *mux.Response) error {
		w.JSON(muxhandlers.JWTClaims(req))
		return nil
	}).Middleware(bearer).CacheTime(0)

	return nil
}
