package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/Helmus101/confluence/internal/config"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiter holds one token bucket per caller. A bucket idle for a full
// interval has refilled, so it is dropped and recreated on the next request.
type keyedLimiter struct {
	mu        sync.Mutex
	every     rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	entries   map[string]*limiterEntry
}

func newKeyedLimiter(cfg config.RateLimitConfig, now func() time.Time) *keyedLimiter {
	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	idle := cfg.Interval
	if idle < time.Minute {
		idle = time.Minute
	}
	return &keyedLimiter{
		every:     rate.Every(perRequest),
		burst:     cfg.Requests,
		idle:      idle,
		now:       now,
		lastSweep: now(),
		entries:   make(map[string]*limiterEntry),
	}
}

func (k *keyedLimiter) allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= k.idle {
		for id, e := range k.entries {
			if now.Sub(e.lastSeen) >= k.idle {
				delete(k.entries, id)
			}
		}
		k.lastSweep = now
	}

	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(k.every, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (k *keyedLimiter) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// AIRateLimiter applies a per-user token bucket to routes that call the
// language model. Unauthenticated callers share one bucket per remote IP.
func AIRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}
	return rateLimit(newKeyedLimiter(cfg, time.Now))
}

func rateLimit(limiter *keyedLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, _ := c.Get(ContextKeyUserID).(string)
			if key == "" {
				key = "ip:" + c.RealIP()
			}
			if !limiter.allow(key) {
				return reject(c, http.StatusTooManyRequests, "ai rate limit exceeded")
			}
			return next(c)
		}
	}
}
