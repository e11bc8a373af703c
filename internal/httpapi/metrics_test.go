package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func scrape(t *testing.T) []byte {
	t.Helper()
	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	return mrr.Body.Bytes()
}

func preview(b []byte) string {
	if len(b) > 200 {
		b = b[:200]
	}
	return string(b)
}

// TestMetricsMiddleware_EmitsRequestCounters verifies that wrapping a handler
// with MetricsMiddleware results in request metrics being exposed via the
// Prometheus /metrics handler.
func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := scrape(t)
	if !bytes.Contains(body, []byte("predictd_http_requests_total")) {
		t.Fatalf("expected predictd_http_requests_total in metrics; got: %q", preview(body))
	}
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	h := NewMux(&mockService{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models/some-model", nil))
	body := scrape(t)
	if !bytes.Contains(body, []byte(`path="/models/{name}"`)) {
		t.Fatalf("expected route pattern label; got: %q", preview(body))
	}
	if bytes.Contains(body, []byte(`path="/models/some-model"`)) {
		t.Fatalf("raw path leaked into labels")
	}
}

func TestMetrics_PredictCounters(t *testing.T) {
	h := NewMux(&mockService{})
	postPredict(t, h, `{"data":[{"a":1},{"a":2}],"domain":"metricsdomain"}`)
	postPredict(t, h, `nope`)
	body := scrape(t)
	if !bytes.Contains(body, []byte(`predictd_predict_records_total{domain="metricsdomain",model="m1"} 2`)) {
		t.Fatalf("expected records counter; got: %q", preview(body))
	}
	if !bytes.Contains(body, []byte(`predictd_predict_errors_total{status="400"}`)) {
		t.Fatalf("expected error counter")
	}
}

func TestIncrementBackpressure(t *testing.T) {
	IncrementBackpressure("")
	body := scrape(t)
	if !bytes.Contains(body, []byte(`predictd_http_backpressure_total{reason="unspecified"}`)) {
		t.Fatalf("expected backpressure counter")
	}
}
