package types

// PredictRequest is the POST /predict payload.
type PredictRequest struct {
	// Feature records to score, in order.
	Data []FeatureRecord `json:"data"`
	// Domain tag selecting the model family.
	// example: healthcare
	Domain string `json:"domain" example:"healthcare"`
	// Optional explicit model name. Empty selects the best model for the domain.
	// example: heart-risk-logit
	ModelName string `json:"model_name,omitempty" example:"heart-risk-logit"`
	// When true, the response carries one confidence value per prediction.
	// example: true
	ReturnConfidence bool `json:"return_confidence" example:"true"`
}

// PredictResponse is returned by POST /predict on success.
type PredictResponse struct {
	// Name of the model that produced the predictions.
	// example: heart-risk-logit
	ModelUsed string `json:"model_used" example:"heart-risk-logit"`
	// Domain of the model used.
	// example: healthcare
	Domain string `json:"domain" example:"healthcare"`
	// One prediction per input record, in input order.
	Predictions []float64 `json:"predictions"`
	// Per-prediction confidence; null unless requested.
	Confidence []float64 `json:"confidence"`
	// Server-side processing time in milliseconds.
	// example: 0.42
	ProcessingTimeMS float64 `json:"processing_time_ms" example:"0.42"`
	// Request identifier, when available.
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Number of models currently in the registry.
	// example: 5
	ModelsLoaded int `json:"models_loaded" example:"5"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	Timestamp int64 `json:"timestamp" example:"1700000000"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: no model for domain: astrology
	Error string `json:"error" example:"no model for domain: astrology"`
	// Same message, for clients that read `detail`.
	Detail string `json:"detail" example:"no model for domain: astrology"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// ModelStats holds per-model counters for /system/stats.
type ModelStats struct {
	// example: heart-risk-logit
	Name string `json:"name" example:"heart-risk-logit"`
	// example: healthcare
	Domain string `json:"domain" example:"healthcare"`
	// Requests served by this model.
	// example: 40
	Requests uint64 `json:"requests" example:"40"`
	// Records scored by this model.
	// example: 80
	Predictions uint64 `json:"predictions" example:"80"`
	// Current queue length.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Requests currently scoring.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
}

// StatsResponse is returned by GET /system/stats.
type StatsResponse struct {
	// Overall state (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// example: 5
	ModelsLoaded int `json:"models_loaded" example:"5"`
	// Registry generation; increments on every reload.
	// example: 1
	RegistryGeneration uint64 `json:"registry_generation" example:"1"`
	// Successful /predict calls.
	// example: 1247
	TotalRequests uint64 `json:"total_requests" example:"1247"`
	// Records scored across all calls.
	// example: 2494
	TotalPredictions uint64 `json:"total_predictions" example:"2494"`
	// Failed /predict calls.
	// example: 3
	TotalErrors uint64 `json:"total_errors" example:"3"`
	// example: 100
	CacheHits uint64 `json:"cache_hits" example:"100"`
	// example: 2394
	CacheMisses uint64 `json:"cache_misses" example:"2394"`
	// Mean processing time across successful calls.
	// example: 0.35
	AvgProcessingMS float64 `json:"avg_processing_ms" example:"0.35"`
	// Persisted totals, when a history store is configured.
	History *HistoryStats `json:"history,omitempty"`
	Models  []ModelStats  `json:"models"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
}

// HistoryStats summarizes the persisted prediction log.
type HistoryStats struct {
	// example: 1247
	Calls int64 `json:"calls" example:"1247"`
	// example: 2494
	Records int64 `json:"records" example:"2494"`
	// example: 3
	Failures int64 `json:"failures" example:"3"`
	// example: 0.35
	AvgProcessingMS float64 `json:"avg_processing_ms" example:"0.35"`
	// Latest logged calls, newest first.
	Recent []HistoryEntry `json:"recent,omitempty"`
}

// HistoryEntry is one logged /predict call.
type HistoryEntry struct {
	RequestID string `json:"request_id,omitempty"`
	// example: heart-risk-logit
	Model string `json:"model" example:"heart-risk-logit"`
	// example: healthcare
	Domain string `json:"domain" example:"healthcare"`
	// example: 2
	Records int `json:"records" example:"2"`
	// example: 0.42
	ProcessingMS float64 `json:"processing_ms" example:"0.42"`
	Success      bool    `json:"success"`
	Error        string  `json:"error,omitempty"`
	// example: 1700000000
	Timestamp int64 `json:"timestamp" example:"1700000000"`
}
