package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/services"
	"tenantnotes/internal/httputil"
	"tenantnotes/internal/metrics"
)

// rejectedRoute labels requests refused before routing, keeping them apart
// from the per-pattern series Instrument records
const rejectedRoute = "unauthenticated"

// Authenticate resolves the bearer token of every non-public request into
// the caller's identity and stores it in the request context. Requests
// without a valid session get 401 before reaching a handler and are logged
// and counted here, since Instrument only sees routed requests.
func Authenticate(resolver services.SessionResolver, publicPaths []string, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	publicSet := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		publicSet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight carries no credentials
			if publicSet[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			identity, err := resolver.Resolve(r.Context(), bearerToken(r))
			if err == nil {
				next.ServeHTTP(w, httputil.WithIdentity(r, identity))
				return
			}

			status := http.StatusUnauthorized
			if errors.Is(err, domain.ErrUnauthorized) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tenantnotes"`)
				httputil.RespondError(w, status, err.Error())
				logger.Warn("request rejected",
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"reason", err.Error(),
				)
			} else {
				status = http.StatusInternalServerError
				httputil.RespondError(w, status, "internal server error")
				logger.Error("session lookup failed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"error", err,
				)
			}
			m.ObserveRequest(r.Method, rejectedRoute, status, time.Since(start))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
