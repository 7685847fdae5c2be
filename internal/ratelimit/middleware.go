package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"tenantnotes/internal/httputil"
	"tenantnotes/internal/metrics"
)

// Backend takes tokens from a named bucket
type Backend interface {
	CheckRateLimit(ctx context.Context, key string, maxTokens int, refillRate float64, requested int) (allowed bool, remaining int, err error)
}

// Policy sizes the per-client bucket
type Policy struct {
	Burst      int     // bucket capacity
	RefillRate float64 // tokens per second
}

// LoginMiddleware limits login attempts per client IP. A backend failure
// lets the request through: an unavailable Redis must not lock users out.
func LoginMiddleware(backend Backend, policy Policy, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "login:" + httputil.ClientIP(r)

			allowed, remaining, err := backend.CheckRateLimit(r.Context(), key, policy.Burst, policy.RefillRate, 1)
			if err != nil {
				logger.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(policy.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				m.LoginAttempt("rate_limited")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(policy.RefillRate)))
				httputil.RespondError(w, http.StatusTooManyRequests, "Too many login attempts, please retry later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds is the time until one token is back, rounded up
func retryAfterSeconds(refillRate float64) int {
	if refillRate <= 0 {
		return 60
	}
	secs := int(1/refillRate + 0.999)
	if secs < 1 {
		secs = 1
	}
	return secs
}
