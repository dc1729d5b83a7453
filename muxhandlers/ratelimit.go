package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vitalvas/edgemux/mux"
)

// ErrInvalidRate is returned when RateLimitConfig.Rate or Burst is not
// positive.
var ErrInvalidRate = errors.New("rate limit: rate and burst must be positive")

// RateLimitConfig configures the Rate Limit middleware behaviour.
type RateLimitConfig struct {
	// Rate is the number of requests per second allowed per key.
	Rate float64

	// Burst is the maximum burst size per key.
	Burst int

	// KeyFunc derives the limiter key. Defaults to RemoteIP, or to ClientIP
	// when TrustForwarded is set.
	KeyFunc func(r *mux.Request) string

	// TrustForwarded keys clients by X-Forwarded-For and X-Real-Ip. Set it
	// only behind a proxy that overwrites those headers, otherwise clients
	// escape the limit by forging them.
	TrustForwarded bool

	// IdleTTL is how long an unused limiter is kept. Defaults to one hour.
	IdleTTL time.Duration
}

// A visitor tracks a rate limiter and last seen time.
type visitor struct {
	lastSeen time.Time
	limiter  *rate.Limiter
}

// visitors maps a visitor to a limiter key.
type visitors struct {
	mu      sync.Mutex
	val     map[string]*visitor
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	sweep   time.Time
	now     func() time.Time
}

// fetch retrieves the limiter for key creating a new one if not seen.
// Limiters idle for longer than idleTTL are evicted at most once per idleTTL.
func (vs *visitors) fetch(key string) *rate.Limiter {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	now := vs.now()
	if now.Sub(vs.sweep) > vs.idleTTL {
		for k, v := range vs.val {
			if now.Sub(v.lastSeen) > vs.idleTTL {
				delete(vs.val, k)
			}
		}
		vs.sweep = now
	}

	v, ok := vs.val[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(vs.limit, vs.burst)}
		vs.val[key] = v
	}

	v.lastSeen = now
	return v.limiter
}

// RateLimitMiddleware returns a middleware that applies a token bucket per
// key and halts with 429 Too Many Requests when the bucket is empty.
//
// It returns ErrInvalidRate if Rate or Burst is not positive.
func RateLimitMiddleware(cfg RateLimitConfig) (mux.MiddlewareFunc, error) {
	if cfg.Rate <= 0 || cfg.Burst <= 0 {
		return nil, ErrInvalidRate
	}

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = RemoteIP
		if cfg.TrustForwarded {
			keyFunc = ClientIP
		}
	}

	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = time.Hour
	}

	vs := &visitors{
		val:     make(map[string]*visitor),
		limit:   rate.Limit(cfg.Rate),
		burst:   cfg.Burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}

	retryAfter := strconv.Itoa(max(1, int(1/cfg.Rate)))

	return func(r *mux.Request, w *mux.Response, next mux.NextFunc) {
		if !vs.fetch(keyFunc(r)).Allow() {
			noStore(w).
				Status(http.StatusTooManyRequests).
				SetHeader("Retry-After", retryAfter).
				SetHeader("Content-Type", "text/plain; charset=utf-8").
				Send(http.StatusText(http.StatusTooManyRequests))
			return
		}

		next(nil)
	}, nil
}
