package client

import (
	"context"
	"fmt"
	"io"

	"predictd/pkg/types"
)

// SmokeRecords are two healthcare patients, one low and one high risk.
var SmokeRecords = []types.FeatureRecord{
	{
		"age": 45, "blood_pressure": 120, "cholesterol": 200,
		"bmi": 25, "glucose": 100, "heart_rate": 72,
		"family_history": 1, "exercise_freq": 3, "smoking_years": 0,
		"alcohol_consumption": 2, "stress_level": 4, "sleep_quality": 7,
	},
	{
		"age": 65, "blood_pressure": 140, "cholesterol": 240,
		"bmi": 32, "glucose": 130, "heart_rate": 85,
		"family_history": 1, "exercise_freq": 1, "smoking_years": 20,
		"alcohol_consumption": 4, "stress_level": 8, "sleep_quality": 5,
	},
}

// Smoke exercises health, model listing and a healthcare prediction against
// a running server, writing a human-readable report to w. Any failed step
// returns an error.
func Smoke(ctx context.Context, c *Client, w io.Writer) error {
	fmt.Fprintln(w, "Testing predictd API...")

	h, err := c.Health(ctx)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	fmt.Fprintf(w, "Health check: status=%s models_loaded=%d\n", h.Status, h.ModelsLoaded)

	models, err := c.Models(ctx)
	if err != nil {
		return fmt.Errorf("models: %w", err)
	}
	fmt.Fprintf(w, "Available models: %d\n", len(models))
	for i, m := range models {
		if i == 3 {
			break
		}
		fmt.Fprintf(w, "   - %s (%s)\n", m.Name, m.Domain)
	}

	resp, err := c.Predict(ctx, types.PredictRequest{
		Data:             SmokeRecords,
		Domain:           "healthcare",
		ReturnConfidence: true,
	})
	if err != nil {
		fmt.Fprintf(w, "Prediction failed: %v\n", err)
		return fmt.Errorf("predict: %w", err)
	}
	if len(resp.Predictions) != len(SmokeRecords) {
		return fmt.Errorf("predict: got %d predictions for %d records", len(resp.Predictions), len(SmokeRecords))
	}
	fmt.Fprintln(w, "Prediction successful!")
	fmt.Fprintf(w, "   Model used: %s\n", resp.ModelUsed)
	fmt.Fprintf(w, "   Predictions: %v\n", resp.Predictions)
	fmt.Fprintf(w, "   Confidence: %v\n", resp.Confidence)
	fmt.Fprintf(w, "   Processing time: %.2fms\n", resp.ProcessingTimeMS)
	return nil
}
