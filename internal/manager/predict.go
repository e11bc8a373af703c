package manager

import (
	"context"
	"strings"
	"time"

	"predictd/internal/history"
	"predictd/internal/scoring"
	"predictd/pkg/types"
)

type requestIDKey struct{}

// WithRequestID attaches a request identifier that Predict reports in its
// response, events and history entries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the identifier set by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Predict scores every record in req with the model selected for it. The
// response holds one prediction per record in input order, and confidences
// only when req.ReturnConfidence is set.
func (m *Manager) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	start := time.Now()
	resp, modelName, err := m.predict(ctx, req)
	elapsed := time.Since(start)
	m.finish(ctx, req, modelName, resp, elapsed, err)
	if err != nil {
		return types.PredictResponse{}, err
	}
	resp.ProcessingTimeMS = float64(elapsed.Nanoseconds()) / 1e6
	resp.RequestID = RequestIDFrom(ctx)
	return resp, nil
}

func (m *Manager) predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, string, error) {
	if err := validateRequest(req); err != nil {
		return types.PredictResponse{}, "", err
	}
	inst, err := m.resolve(req.Domain, req.ModelName)
	if err != nil {
		return types.PredictResponse{}, "", err
	}
	release, err := m.beginPrediction(ctx, inst)
	if err != nil {
		return types.PredictResponse{}, inst.def.Name, err
	}
	defer release()

	preds := make([]float64, len(req.Data))
	var conf []float64
	if req.ReturnConfidence {
		conf = make([]float64, len(req.Data))
	}
	for i, rec := range req.Data {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return types.PredictResponse{}, inst.def.Name, err
			}
		}
		r, err := m.score(inst, rec)
		if err != nil {
			return types.PredictResponse{}, inst.def.Name, errInvalid("record %d: %v", i, err)
		}
		preds[i] = r.Value
		if conf != nil {
			conf[i] = r.Confidence
		}
	}
	return types.PredictResponse{
		ModelUsed:   inst.def.Name,
		Domain:      inst.def.Domain,
		Predictions: preds,
		Confidence:  conf,
	}, inst.def.Name, nil
}

func (m *Manager) score(inst *instance, rec types.FeatureRecord) (scoring.Result, error) {
	if m.cache == nil {
		return scoring.Score(inst.def, rec)
	}
	key := cacheKey(inst, rec)
	if r, ok := m.cache.get(key); ok {
		return r, nil
	}
	r, err := scoring.Score(inst.def, rec)
	if err != nil {
		return r, err
	}
	m.cache.put(key, r)
	return r, nil
}

func validateRequest(req types.PredictRequest) error {
	if len(req.Data) == 0 {
		return errInvalid("data must contain at least one record")
	}
	for i, rec := range req.Data {
		if len(rec) == 0 {
			return errInvalid("record %d is empty", i)
		}
	}
	if strings.TrimSpace(req.Domain) == "" && strings.TrimSpace(req.ModelName) == "" {
		return errInvalid("domain is required")
	}
	return nil
}

// finish updates counters and emits the event and history entry for a call.
func (m *Manager) finish(ctx context.Context, req types.PredictRequest, modelName string, resp types.PredictResponse, elapsed time.Duration, err error) {
	rid := RequestIDFrom(ctx)
	ms := float64(elapsed.Nanoseconds()) / 1e6
	entry := history.Entry{
		RequestID:    rid,
		Model:        modelName,
		Domain:       req.Domain,
		Records:      len(req.Data),
		ProcessingMS: ms,
		Success:      err == nil,
	}
	if err != nil {
		m.totalErrors.Add(1)
		entry.Error = err.Error()
		m.events().Publish(Event{Name: "predict_error", ModelID: modelName, Fields: map[string]any{
			"domain": req.Domain, "error": err.Error(), "request_id": rid,
		}})
		m.log.Debug().Err(err).Str("domain", req.Domain).Str("model", modelName).Str("request_id", rid).Msg("predict failed")
	} else {
		n := uint64(len(resp.Predictions))
		m.totalRequests.Add(1)
		m.totalPredictions.Add(n)
		m.totalProcNanos.Add(uint64(elapsed.Nanoseconds()))
		c := m.countersFor(modelName)
		c.requests.Add(1)
		c.predictions.Add(n)
		m.events().Publish(Event{Name: "predict", ModelID: modelName, Fields: map[string]any{
			"domain": resp.Domain, "records": len(resp.Predictions), "processing_ms": ms, "request_id": rid,
		}})
	}
	if m.history != nil {
		// Detached from the request so a client disconnect still gets logged.
		hctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if herr := m.history.Record(hctx, entry); herr != nil {
			m.log.Warn().Err(herr).Msg("history record failed")
		}
	}
}
