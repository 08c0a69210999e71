package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewIsolatedRegistries(t *testing.T) {
	a := New()
	b := New()

	a.Submissions.Inc()

	if got := testutil.ToFloat64(a.Submissions); got != 1 {
		t.Errorf("a submissions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.Submissions); got != 0 {
		t.Errorf("b submissions = %v, want 0", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.LoginAttempts.WithLabelValues(LoginNotAdmin).Inc()
	m.Exports.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`leadline_login_attempts_total{result="not_admin"} 1`,
		"leadline_exports_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
