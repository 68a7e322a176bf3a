package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveFetch("/dashboard/stats", "ok")
	m.ObserveFetch("/dashboard/stats", "ok")
	m.ObserveFetch("/dashboard/stats", "fetch_error")
	m.RecordIngested("fixtures")

	if got := testutil.ToFloat64(m.remoteFetches.WithLabelValues("/dashboard/stats", "ok")); got != 2 {
		t.Errorf("expected 2 ok fetches, got %g", got)
	}
	if got := testutil.ToFloat64(m.recordsIngested.WithLabelValues("fixtures")); got != 1 {
		t.Errorf("expected 1 ingested record, got %g", got)
	}

	m.SubscriberAdded()
	m.SubscriberAdded()
	m.SubscriberRemoved()
	if got := testutil.ToFloat64(m.subscribers); got != 1 {
		t.Errorf("expected 1 subscriber, got %g", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveFilter("", 3)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), `patrol_filter_result_size_count{kind="all"} 1`) {
		t.Errorf("expected filter histogram in exposition, got:\n%s", body)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// MustRegister would panic if collectors leaked into a shared registry
	New()
	New()
}
