package middleware

import (
	"log/slog"
	"net"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP; buckets for idle clients
// age out of the LRU.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	perSec   rate.Limit
	burst    int
	logger   *slog.Logger
}

func NewRateLimiter(perSec float64, burst int, logger *slog.Logger) *RateLimiter {
	if perSec <= 0 {
		perSec = 20
	}
	if burst <= 0 {
		burst = 40
	}
	cache, _ := lru.New[string, *rate.Limiter](4096)
	return &RateLimiter{
		limiters: cache,
		perSec:   rate.Limit(perSec),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiterFor(clientIP string) *rate.Limiter {
	if l, ok := rl.limiters.Get(clientIP); ok {
		return l
	}
	l := rate.NewLimiter(rl.perSec, rl.burst)
	rl.limiters.Add(clientIP, l)
	return l
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			clientIP = r.RemoteAddr
		}

		if !rl.limiterFor(clientIP).Allow() {
			rl.logger.Warn("rate limit exceeded", "client_ip", clientIP, "path", r.URL.Path)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
