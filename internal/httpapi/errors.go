package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"predictd/internal/manager"
	"predictd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case manager.IsInvalidRequest(err):
		return http.StatusBadRequest
	case manager.IsModelNotFound(err):
		return http.StatusNotFound
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Detail: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
