package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"predictd/internal/httpapi"
	"predictd/internal/manager"
	"predictd/internal/registry"
	"predictd/pkg/types"
)

// newBuiltinServer serves the built-in registry through the full HTTP stack.
func newBuiltinServer(t *testing.T, cfg manager.ManagerConfig) (*httptest.Server, *manager.Manager, *httpapi.EventHub) {
	t.Helper()
	if cfg.Registry == nil {
		defs, err := registry.Builtin()
		if err != nil {
			t.Fatalf("builtin: %v", err)
		}
		cfg.Registry = defs
	}
	hub := httpapi.NewEventHub(nil)
	cfg.Publisher = hub
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMuxWithOptions(mgr, httpapi.Options{Events: hub}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		_ = mgr.Close()
	})
	return srv, mgr, hub
}

func postJSON(t *testing.T, url string, v any) (int, []byte) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func healthcareRequest(confidence bool) types.PredictRequest {
	return types.PredictRequest{
		Data: []types.FeatureRecord{
			{"age": 45, "blood_pressure": 120, "cholesterol": 200, "bmi": 25, "glucose": 100, "heart_rate": 72,
				"family_history": 1, "exercise_freq": 3, "smoking_years": 0, "alcohol_consumption": 2, "stress_level": 4, "sleep_quality": 7},
			{"age": 65, "blood_pressure": 140, "cholesterol": 240, "bmi": 32, "glucose": 130, "heart_rate": 85,
				"family_history": 1, "exercise_freq": 1, "smoking_years": 20, "alcohol_consumption": 4, "stress_level": 8, "sleep_quality": 5},
		},
		Domain:           "healthcare",
		ReturnConfidence: confidence,
	}
}
