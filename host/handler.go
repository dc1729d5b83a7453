// Package host adapts the mux dispatch pipeline to net/http.
//
// A Handler builds the per-request event whose deferred work is tracked by
// the Handler, dispatches through mux.HandleRequest and writes the Result.
// Bodies carrying Content-Encoding: gzip are compressed when the client
// accepts gzip; otherwise the header is dropped and the body sent as is.
//
//	h, err := host.NewHandler(router, host.Options{CacheTime: 60, Cache: cache.NewMemory()})
//	if err != nil {
//		log.Fatal(err)
//	}
//	srv := &http.Server{Addr: ":8080", Handler: h}
//	...
//	_ = srv.Shutdown(ctx)
//	_ = h.Shutdown(ctx)
package host

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/vitalvas/edgemux/codec"
	"github.com/vitalvas/edgemux/logger"
	"github.com/vitalvas/edgemux/mux"
)

// Options configures every dispatch made by a Handler.
type Options struct {
	CacheTime            int
	SharedMaxAge         bool
	DisableCookieParsing bool
	CacheKey             mux.CacheKeyFunc
	Cache                mux.Cache
	Context              any
	Env                  any
	Decoder              codec.Decoder
	Logger               logger.Logger

	// GzipLevel is the gzip compression level. When zero,
	// flate.DefaultCompression is used.
	GzipLevel int
}

// Handler serves a mux.Router over net/http.
type Handler struct {
	router *mux.Router
	opts   Options
	gz     *gzipper
	log    logger.Logger
	wg     sync.WaitGroup
}

// NewHandler returns a Handler dispatching to router.
//
// It returns ErrInvalidCompressionLevel if GzipLevel is outside the valid
// range.
func NewHandler(router *mux.Router, opts Options) (*Handler, error) {
	gz, err := newGzipper(opts.GzipLevel)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	opts.Logger = log

	return &Handler{router: router, opts: opts, gz: gz, log: log}, nil
}

// event is the per-request mux.Event. Deferred tasks run in their own
// goroutine and are tracked by the Handler.
type event struct {
	req *http.Request
	h   *Handler
}

func (e *event) Request() *http.Request { return e.req }

func (e *event) WaitUntil(task func()) {
	e.h.wg.Add(1)
	go func() {
		defer e.h.wg.Done()
		task()
	}()
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := mux.HandleRequest(r.Context(), mux.Config{
		Event:                &event{req: r, h: h},
		Router:               h.router,
		CacheTime:            h.opts.CacheTime,
		SharedMaxAge:         h.opts.SharedMaxAge,
		DisableCookieParsing: h.opts.DisableCookieParsing,
		CacheKey:             h.opts.CacheKey,
		Cache:                h.opts.Cache,
		Context:              h.opts.Context,
		Env:                  h.opts.Env,
		Decoder:              h.opts.Decoder,
		Logger:               h.opts.Logger,
	})
	if err != nil {
		h.log.Error("dispatch", &logger.LogContext{Error: err, Request: r})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.write(w, r, res)
}

// write materializes res onto w.
func (h *Handler) write(w http.ResponseWriter, r *http.Request, res *mux.Result) {
	header := w.Header()
	for k, v := range res.Header {
		header[k] = append([]string(nil), v...)
	}

	body := res.Body
	if header.Get("Content-Encoding") == "gzip" {
		body = h.encode(header, r, body)
	}

	if !res.IsRedirect() && len(body) > 0 {
		header.Set("Content-Length", strconv.Itoa(len(body)))
	}

	w.WriteHeader(res.StatusCode)

	if r.Method == http.MethodHead || len(body) == 0 {
		return
	}

	if _, err := w.Write(body); err != nil {
		h.log.Debug("write response", &logger.LogContext{Error: err, Request: r})
	}
}

// encode gzips body when the client accepts it. When it does not, or the
// body is empty or already compressed, the Content-Encoding header is
// dropped and body returned as is.
func (h *Handler) encode(header http.Header, r *http.Request, body []byte) []byte {
	header.Add("Vary", "Accept-Encoding")

	if len(body) == 0 || !acceptsGzip(r) || isCompressedContentType(header.Get("Content-Type")) {
		header.Del("Content-Encoding")
		return body
	}

	compressed, err := h.gz.compress(body)
	if err != nil {
		h.log.Error("gzip response", &logger.LogContext{Error: err, Request: r})
		header.Del("Content-Encoding")
		return body
	}

	return compressed
}

// Wait blocks until all deferred work registered so far has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Shutdown waits for deferred work like Wait, returning ctx.Err() if ctx
// is done first.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
