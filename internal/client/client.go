// Package client is a small HTTP client for the predictd API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"predictd/pkg/types"
)

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("predictd: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to a predictd server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. A nil hc uses a client with a 10s timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	var out types.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Models calls GET /models.
func (c *Client) Models(ctx context.Context) ([]types.Model, error) {
	var out []types.Model
	err := c.do(ctx, http.MethodGet, "/models", nil, &out)
	return out, err
}

// Predict calls POST /predict.
func (c *Client) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	var out types.PredictResponse
	err := c.do(ctx, http.MethodPost, "/predict", req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorMessage prefers the JSON error field and falls back to the raw body.
func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var e types.ErrorResponse
	if json.Unmarshal(b, &e) == nil {
		if e.Detail != "" {
			return e.Detail
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return strings.TrimSpace(string(b))
}
