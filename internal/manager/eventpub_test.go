package manager

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"predictd/pkg/types"
)

func TestMultiPublisherFansOutInOrder(t *testing.T) {
	a, b := NewMemoryPublisher(), NewMemoryPublisher()
	mp := MultiPublisher{a, nil, b}
	mp.Publish(Event{Name: "registry_loaded"})
	mp.Publish(Event{Name: "predict", ModelID: "hc-logit"})
	for _, p := range []*MemoryPublisher{a, b} {
		evs := p.Events()
		if len(evs) != 2 || evs[0].Name != "registry_loaded" || evs[1].ModelID != "hc-logit" {
			t.Fatalf("unexpected events: %+v", evs)
		}
	}
}

func TestLogPublisherWritesEvents(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf).Level(zerolog.DebugLevel))
	p.Publish(Event{Name: "predict", ModelID: "hc-logit", Fields: map[string]any{"records": 2}})
	p.Publish(Event{Name: "predict_error", Fields: map[string]any{"error": "no model for domain: astrology"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %q", buf.String())
	}
	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["message"] != "predict" || first["model"] != "hc-logit" || first["level"] != "debug" || first["records"] != float64(2) {
		t.Fatalf("unexpected predict line: %v", first)
	}
	if second["level"] != "warn" || second["component"] != "events" {
		t.Fatalf("unexpected error line: %v", second)
	}
}

func TestManagerPublishesThroughMulti(t *testing.T) {
	var buf bytes.Buffer
	mem := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{
		Registry:  testRegistry(),
		Publisher: MultiPublisher{mem, NewLogPublisher(zerolog.New(&buf).Level(zerolog.DebugLevel))},
	})
	if _, err := m.Predict(testCtx(t), types.PredictRequest{Data: twoRecords(), Domain: "healthcare"}); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(mem.Named("predict")) != 1 {
		t.Fatalf("expected one predict event, got %+v", mem.Events())
	}
	if !strings.Contains(buf.String(), `"message":"predict"`) {
		t.Fatalf("predict event not logged: %q", buf.String())
	}
}
