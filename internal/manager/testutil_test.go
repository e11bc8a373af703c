package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"predictd/internal/history"
	"predictd/pkg/types"
)

// testRegistry returns two healthcare models (the logistic one is more
// accurate) and one finance model.
func testRegistry() []types.ModelDefinition {
	return []types.ModelDefinition{
		{
			Name: "hc-tree", Domain: "healthcare", Kind: types.KindTree, Accuracy: 0.8,
			Features: []string{"glucose"},
			Nodes: []types.TreeNode{
				{Feature: "glucose", Threshold: 120, Left: 1, Right: 2},
				{Leaf: true, Label: 0, Confidence: 0.9},
				{Leaf: true, Label: 1, Confidence: 0.8},
			},
		},
		{
			Name: "hc-logit", Domain: "Healthcare", Kind: types.KindLogistic, Accuracy: 0.9, Version: "1",
			Features: []string{"age", "glucose"},
			Weights:  map[string]float64{"age": 0.05, "glucose": 0.02},
			Bias:     -4,
		},
		{
			Name: "fin-linear", Domain: "finance", Kind: types.KindLinear, Accuracy: 0.7,
			Features: []string{"income"},
			Weights:  map[string]float64{"income": 0.1},
		},
	}
}

func twoRecords() []types.FeatureRecord {
	return []types.FeatureRecord{
		{"age": 45, "glucose": 100},
		{"age": 65, "glucose": 130},
	}
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// fakeHistory records entries in memory.
type fakeHistory struct {
	mu      sync.Mutex
	entries []history.Entry
	fail    bool
}

func (f *fakeHistory) Record(ctx context.Context, e history.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk full")
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeHistory) Summary(ctx context.Context) (types.HistoryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return types.HistoryStats{}, errors.New("disk full")
	}
	var s types.HistoryStats
	for _, e := range f.entries {
		s.Calls++
		if e.Success {
			s.Records += int64(e.Records)
		} else {
			s.Failures++
		}
	}
	return s, nil
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("disk full")
	}
	var out []history.Entry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}
