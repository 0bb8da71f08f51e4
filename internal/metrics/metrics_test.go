package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New()
	m.Transition("sign", "ok")
	m.Transition("sign", "ok")
	m.Conflict("already_evaluated")
	m.CASRetry("sign")
	m.ObserveHTTP(http.MethodPost, "/api/ententes/{id}/signer", 200, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("sign", "ok")); got != 2 {
		t.Fatalf("transitions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.conflicts.WithLabelValues("already_evaluated")); got != 1 {
		t.Fatalf("conflicts = %v, want 1", got)
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "stages_cas_retries_total") {
		t.Fatalf("metrics endpoint missing series: %d %s", rr.Code, rr.Body.String())
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.Transition("sign", "ok")
	m.Conflict("x")
	m.CASRetry("sign")
	m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("nil metrics handler = %d, want 404", rr.Code)
	}
}
