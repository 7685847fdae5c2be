package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/httputil"
	"tenantnotes/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubResolver struct {
	identity *models.Identity
	err      error
	gotToken string
}

func (s *stubResolver) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	s.gotToken = token
	return s.identity, s.err
}

// echoIdentity writes the user id seen by the handler
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id := httputil.GetIdentity(r); id != nil {
		io.WriteString(w, id.UserID)
		return
	}
	io.WriteString(w, "anonymous")
})

func TestAuthenticate(t *testing.T) {
	alice := &models.Identity{UserID: "alice", TenantID: "t1"}

	tests := []struct {
		name       string
		resolver   *stubResolver
		path       string
		method     string
		header     string
		wantStatus int
		wantBody   string
		wantToken  string
	}{
		{
			name:       "valid bearer",
			resolver:   &stubResolver{identity: alice},
			path:       "/api/notes",
			header:     "Bearer tok-1",
			wantStatus: http.StatusOK,
			wantBody:   "alice",
			wantToken:  "tok-1",
		},
		{
			name:       "lowercase scheme",
			resolver:   &stubResolver{identity: alice},
			path:       "/api/notes",
			header:     "bearer tok-2",
			wantStatus: http.StatusOK,
			wantBody:   "alice",
			wantToken:  "tok-2",
		},
		{
			name:       "missing header",
			resolver:   &stubResolver{err: &domain.UnauthorizedError{Message: "authentication required"}},
			path:       "/api/notes",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "basic scheme ignored",
			resolver:   &stubResolver{err: &domain.UnauthorizedError{Message: "authentication required"}},
			path:       "/api/notes",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "public path",
			resolver:   &stubResolver{err: errors.New("must not be called")},
			path:       "/health",
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:       "preflight",
			resolver:   &stubResolver{err: errors.New("must not be called")},
			path:       "/api/notes",
			method:     http.MethodOptions,
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:       "store failure",
			resolver:   &stubResolver{err: errors.New("connection refused")},
			path:       "/api/notes",
			header:     "Bearer tok-3",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticate(tt.resolver, []string{"/health", "/api/auth/login"}, nil, discardLogger())(echoIdentity)

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			r := httptest.NewRequest(method, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			if tt.wantToken != "" {
				assert.Equal(t, tt.wantToken, tt.resolver.gotToken)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
			}
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}
}

func TestAuthenticate_RecordsRejections(t *testing.T) {
	m := metrics.New("test")
	resolver := &stubResolver{err: &domain.UnauthorizedError{Message: "authentication required"}}
	h := Authenticate(resolver, []string{"/health"}, m, discardLogger())(echoIdentity)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/notes/x", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	resolver.err = errors.New("connection refused")
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/notes", nil))

	expected := `
# HELP test_http_requests_total Total HTTP requests by route and status
# TYPE test_http_requests_total counter
test_http_requests_total{method="DELETE",route="unauthenticated",status="401"} 1
test_http_requests_total{method="GET",route="unauthenticated",status="401"} 1
test_http_requests_total{method="GET",route="unauthenticated",status="500"} 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_http_requests_total")
	require.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	m := metrics.New("test")
	h := Recovery(m, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assertPanicsRecovered(t, m, 1)
}

func TestRecovery_ResponseAlreadyStarted(t *testing.T) {
	m := metrics.New("test")
	h := Recovery(m, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"n1"`)
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/notes", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"id":"n1"`, w.Body.String(), "nothing is appended to a started response")
	assertPanicsRecovered(t, m, 1)
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	m := metrics.New("test")
	h := Recovery(m, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	})
	assertPanicsRecovered(t, m, 0)
}

func assertPanicsRecovered(t *testing.T, m *metrics.Metrics, want int) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP test_panics_recovered_total Handler panics caught by the recovery middleware
# TYPE test_panics_recovered_total counter
test_panics_recovered_total %d
`, want)
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_panics_recovered_total")
	require.NoError(t, err)
}

func TestInstrument(t *testing.T) {
	m := metrics.New("test")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := Instrument(m, discardLogger())(mux)

	for _, path := range []string{"/api/notes/a", "/api/notes/b", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP test_http_requests_total Total HTTP requests by route and status
# TYPE test_http_requests_total counter
test_http_requests_total{method="GET",route="GET /api/notes/{id}",status="404"} 2
test_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_http_requests_total")
	require.NoError(t, err)
}
