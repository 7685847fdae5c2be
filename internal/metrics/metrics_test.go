package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("tenantnotes")

	m.NoteCreated("FREE")
	m.NoteCreated("FREE")
	m.NoteCreated("PRO")
	m.QuotaRejected("FREE")
	m.TenantUpgraded()
	m.LoginAttempt("invalid")
	m.PanicRecovered()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.notesCreatedTotal.WithLabelValues("FREE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notesCreatedTotal.WithLabelValues("PRO")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaRejectionsTotal.WithLabelValues("FREE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tenantUpgradesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttemptsTotal.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.panicsTotal))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "GET /api/notes", 200, time.Millisecond)
		m.NoteCreated("FREE")
		m.NoteDeleted("FREE")
		m.QuotaRejected("FREE")
		m.TenantUpgraded()
		m.LoginAttempt("success")
		m.PanicRecovered()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New("tenantnotes")
	m.ObserveRequest("POST", "POST /api/notes", 201, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `tenantnotes_http_requests_total{method="POST",route="POST /api/notes",status="201"} 1`))
}
