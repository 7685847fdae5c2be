package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"tenantnotes/internal/httputil"
	"tenantnotes/internal/metrics"
)

// Recovery turns a handler panic into a logged, counted 500. When the
// handler already started its response the status cannot change any more,
// so the panic is only recorded. http.ErrAbortHandler is re-raised for the
// server to drop the connection quietly.
func Recovery(m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				m.PanicRecovered()
				logger.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"response_started", rw.wroteHeader,
					"stack", string(debug.Stack()),
				)

				if !rw.wroteHeader {
					httputil.RespondError(rw, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
