package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"predictd/internal/manager"
	"predictd/pkg/types"
)

type mockService struct {
	models     []types.Model
	stats      types.StatsResponse
	ready      bool
	predictErr error
	gotReq     types.PredictRequest
	gotRID     string
}

func (m *mockService) ListModels() []types.Model { return append([]types.Model(nil), m.models...) }
func (m *mockService) GetModel(name string) (types.Model, error) {
	for _, md := range m.models {
		if md.Name == name {
			return md, nil
		}
	}
	return types.Model{}, manager.ErrModelNotFound(name)
}
func (m *mockService) Stats(context.Context) types.StatsResponse { return m.stats }
func (m *mockService) Ready() bool                                { return m.ready }
func (m *mockService) Uptime() time.Duration                      { return 90 * time.Second }
func (m *mockService) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	m.gotReq = req
	m.gotRID = manager.RequestIDFrom(ctx)
	if m.predictErr != nil {
		return types.PredictResponse{}, m.predictErr
	}
	resp := types.PredictResponse{ModelUsed: "m1", Domain: req.Domain, ProcessingTimeMS: 0.1}
	for range req.Data {
		resp.Predictions = append(resp.Predictions, 1)
		if req.ReturnConfidence {
			resp.Confidence = append(resp.Confidence, 0.9)
		}
	}
	return resp, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func postPredict(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body not json: %v (%s)", err, w.Body.String())
	}
	if e.Code != w.Code || e.Error == "" || e.Detail != e.Error {
		t.Fatalf("unexpected error body: %+v (status %d)", e, w.Code)
	}
	return e
}

func TestHealthHandler(t *testing.T) {
	svc := &mockService{ready: true, models: []types.Model{{Name: "m1"}, {Name: "m2"}}}
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Status != "healthy" || body.ModelsLoaded != 2 || body.UptimeSeconds != 90 || body.Timestamp == 0 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthHandler_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "degraded") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []types.Model{{Name: "m1", Domain: "healthcare"}, {Name: "m2", Domain: "finance"}}}
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body []types.Model
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body) != 2 || body[0].Name != "m1" || body[1].Name != "m2" {
		t.Fatalf("unexpected models: %+v", body)
	}
}

func TestModelsHandler_EmptyIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestModelHandler(t *testing.T) {
	svc := &mockService{models: []types.Model{{Name: "m1"}}}
	h := NewMux(svc)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models/m1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	decodeError(t, w)
}

func TestStatsHandler(t *testing.T) {
	svc := &mockService{stats: types.StatsResponse{State: "ready", TotalRequests: 7}}
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/stats", nil))
	var body types.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.State != "ready" || body.TotalRequests != 7 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestPredictHandler(t *testing.T) {
	svc := &mockService{}
	w := postPredict(t, NewMux(svc), `{"data":[{"a":1},{"a":2}],"domain":"healthcare","return_confidence":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.ModelUsed != "m1" || len(resp.Predictions) != 2 || len(resp.Confidence) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if svc.gotRID == "" {
		t.Fatalf("request id not propagated")
	}
	if svc.gotReq.Domain != "healthcare" || len(svc.gotReq.Data) != 2 || svc.gotReq.Data[1]["a"] != 2 {
		t.Fatalf("request not decoded: %+v", svc.gotReq)
	}
}

func TestPredictHandler_ConfidenceNullWhenNotRequested(t *testing.T) {
	w := postPredict(t, NewMux(&mockService{}), `{"data":[{"a":1}],"domain":"healthcare"}`)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("json: %v", err)
	}
	c, ok := raw["confidence"]
	if !ok || string(c) != "null" {
		t.Fatalf("confidence=%s present=%v", c, ok)
	}
}

func TestPredictHandler_BadJSON(t *testing.T) {
	w := postPredict(t, NewMux(&mockService{}), "not-json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	decodeError(t, w)
}

func TestPredictHandler_UnsupportedMediaType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredictHandler_BodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(64)
	t.Cleanup(func() { SetMaxBodyBytes(0) })
	body := `{"domain":"` + strings.Repeat("a", 200) + `"}`
	w := postPredict(t, NewMux(&mockService{}), body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredictHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", manager.ErrNoModelForDomain("astrology"), http.StatusNotFound},
		{"invalid", manager.ErrInvalidRequest("data must contain at least one record"), http.StatusBadRequest},
		{"busy", manager.ErrTooBusy("m1"), http.StatusTooManyRequests},
		{"unavailable", manager.ErrDependencyUnavailable("manager closed"), http.StatusServiceUnavailable},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"generic", io.EOF, http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := postPredict(t, NewMux(&mockService{predictErr: c.err}), `{"data":[{"a":1}],"domain":"x"}`)
			if w.Code != c.want {
				t.Fatalf("status=%d want %d", w.Code, c.want)
			}
			e := decodeError(t, w)
			if !strings.Contains(e.Error, c.err.Error()) {
				t.Fatalf("error=%q want it to contain %q", e.Error, c.err.Error())
			}
		})
	}
}

func TestPredictHandler_ShutdownCancelsWork(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	SetBaseContext(base)
	t.Cleanup(func() { SetBaseContext(nil) })
	cancel()
	svc := &blockingService{}
	w := postPredict(t, NewMux(svc), `{"data":[{"a":1}],"domain":"x"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

// blockingService waits for its context before failing.
type blockingService struct{ mockService }

func (b *blockingService) Predict(ctx context.Context, _ types.PredictRequest) (types.PredictResponse, error) {
	select {
	case <-ctx.Done():
		return types.PredictResponse{}, ctx.Err()
	case <-time.After(2 * time.Second):
		return types.PredictResponse{}, errors.New("context was not canceled")
	}
}

func TestPredictHandler_Timeout(t *testing.T) {
	SetPredictTimeout(10 * time.Millisecond)
	t.Cleanup(func() { SetPredictTimeout(0) })
	w := postPredict(t, NewMux(&blockingService{}), `{"data":[{"a":1}],"domain":"x"}`)
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{ready: true}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	SetCORSOptions(true, []string{"http://dash.local"}, nil, nil)
	t.Cleanup(func() { corsEnabled = false })
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://dash.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://dash.local" {
		t.Fatalf("allow-origin=%q", got)
	}
}

func TestSecurityHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}
