package oauth

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter keyed by IP address
// or user identity.
type RateLimiter struct {
	mu         sync.RWMutex
	limiters   map[string]*bucket
	rate       int
	burst      int
	cleanup    time.Duration
	trustProxy bool
	logger     *slog.Logger
}

// bucket is a token bucket for a single key.
type bucket struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a rate limiter allowing rate tokens per second
// with the given burst size. Inactive buckets are removed after
// InactiveLimiterCleanupWindow by a background goroutine that runs every
// cleanupInterval.
func NewRateLimiter(rate, burst int, trustProxy bool, cleanupInterval time.Duration, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if cleanupInterval == 0 {
		cleanupInterval = DefaultRateLimitCleanupInterval
	}

	rl := &RateLimiter{
		limiters:   make(map[string]*bucket),
		rate:       rate,
		burst:      burst,
		cleanup:    cleanupInterval,
		trustProxy: trustProxy,
		logger:     logger,
	}

	go rl.cleanupInactiveLimiters()

	return rl
}

// Allow reports whether a request for the given key should be allowed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.RLock()
	b, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if !exists {
		b = &bucket{
			tokens:     float64(rl.burst),
			lastUpdate: time.Now(),
		}
		rl.mu.Lock()
		if existing, ok := rl.limiters[key]; ok {
			b = existing
		} else {
			rl.limiters[key] = b
		}
		rl.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastUpdate).Seconds()

	b.tokens += elapsed * float64(rl.rate)
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

// cleanupInactiveLimiters removes buckets that have been idle.
func (rl *RateLimiter) cleanupInactiveLimiters() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.limiters {
			b.mu.Lock()
			if now.Sub(b.lastUpdate) > InactiveLimiterCleanupWindow {
				delete(rl.limiters, key)
			}
			b.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware applies IP-based rate limiting to an HTTP handler.
// Passes through when no rate limiter is configured.
func (h *Handler) RateLimitMiddleware(next http.Handler) http.Handler {
	if h.rateLimiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r, h.rateLimiter.trustProxy)

		if !h.rateLimiter.Allow(ip) {
			w.Header().Set("Retry-After", "1")
			h.writeError(w, "rate_limit_exceeded",
				fmt.Sprintf("Rate limit exceeded for %s. Please try again later", ip),
				http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request. Proxy headers are
// only honored when trustProxy is set.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Take the first IP if the header lists several.
			for i := 0; i < len(xff); i++ {
				if xff[i] == ',' {
					return xff[:i]
				}
			}
			return xff
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}

	return extractIPFromAddr(r.RemoteAddr)
}

// extractIPFromAddr extracts the IP from "IP:port" format.
func extractIPFromAddr(addr string) string {
	for i := 0; i < len(addr); i++ {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
