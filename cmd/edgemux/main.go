// Command edgemux serves the demo router over HTTP.
//
// Settings come from an optional YAML file (-config), a .env file in the
// working directory and EDGEMUX_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/handlers"

	"github.com/vitalvas/edgemux/cache"
	"github.com/vitalvas/edgemux/codec"
	"github.com/vitalvas/edgemux/config"
	"github.com/vitalvas/edgemux/host"
	"github.com/vitalvas/edgemux/logger"
	"github.com/vitalvas/edgemux/mux"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "edgemux:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.NewLogger(
		logger.WithEnv(cfg.Environment.String()),
		logger.WithLevel(cfg.Level()),
	)
	if sl, ok := log.(*logger.SentryLogger); ok {
		defer sl.Flush(2 * time.Second)
	}

	router, err := newRouter(cfg, log)
	if err != nil {
		return err
	}

	store, closeStore, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	h, err := host.NewHandler(router, host.Options{
		CacheTime:            cfg.CacheTime,
		SharedMaxAge:         cfg.SharedMaxAge,
		DisableCookieParsing: !cfg.ParseCookie,
		Cache:                store,
		Env:                  cfg,
		Decoder:              codec.Decoder{MaxBodyBytes: cfg.MaxBodyBytes},
		Logger:               log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      wrap(h, log, cfg.TrustProxy),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	fmt.Println(routeTable(router))

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening on "+cfg.Addr, &logger.LogContext{Data: map[string]any{
			"environment":   cfg.Environment.String(),
			"cache_backend": cfg.Cache.Backend,
		}})
		errCh <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case s := <-sig:
		log.Info("shutting down on "+s.String(), nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", &logger.LogContext{Error: err})
	}

	// Deferred cache writes may still be running after the last response.
	return h.Shutdown(ctx)
}

// newCache returns the configured response cache and a func releasing it.
func newCache(cfg *config.Config) (mux.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemory(), func() {}, nil
	case config.CacheRedis:
		rc := cache.NewRedis(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}

		return rc, func() { _ = rc.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

// wrap applies the net/http level middleware: panic recovery, access
// logging and, behind a trusted proxy, X-Forwarded-* rewriting.
func wrap(h http.Handler, log logger.Logger, trustProxy bool) http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log}),
		handlers.PrintRecoveryStack(true),
	)

	h = recovery(h)
	if trustProxy {
		h = handlers.ProxyHeaders(h)
	}

	return handlers.CombinedLoggingHandler(os.Stdout, h)
}

// recoveryLogger reports recovered panics through the logger.
type recoveryLogger struct {
	log logger.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Error(fmt.Sprint(v...), nil)
}
