package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bm-streak/internal/logging"
	"golang.org/x/time/rate"
)

const (
	// maxTrackedClients triggers pruning of idle limiters
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages per-client-IP token buckets for API requests
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.Mutex

	limit     rate.Limit
	burstSize int
	now       func() time.Time

	// TrustProxy makes clientIP honour X-Forwarded-For
	TrustProxy bool
}

// NewRateLimiter creates a new rate limiter. Non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  make(map[string]*clientLimiter),
		limit:     limit,
		burstSize: burst,
		now:       time.Now,
	}
}

// Allow reports whether a request from client may proceed
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.limiters[client]
	if !exists {
		if len(rl.limiters) >= maxTrackedClients {
			rl.prune(now)
		}
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burstSize)}
		rl.limiters[client] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// prune drops limiters idle for longer than clientIdleTTL. Caller holds mu.
func (rl *RateLimiter) prune(now time.Time) {
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > clientIdleTTL {
			delete(rl.limiters, key)
		}
	}
}

// clientIP extracts the caller's IP. The first X-Forwarded-For hop is used
// only when trustProxy is set, since clients can forge the header.
func clientIP(r *http.Request, trustProxy bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware creates a middleware that enforces rate limiting
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, rl.TrustProxy)
			if !rl.Allow(ip) {
				logging.WithField("ip", ip).Debug("Rate limit exceeded")
				respondError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
