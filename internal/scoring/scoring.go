// Package scoring evaluates model definitions against feature records.
//
// Scoring is a pure function of (definition, record): the same inputs always
// produce the same prediction and confidence.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"predictd/pkg/types"
)

const defaultThreshold = 0.5

// Result is the outcome of scoring one record.
type Result struct {
	Value      float64
	Confidence float64
}

// ErrEmptyRecord is returned for records without any feature.
var ErrEmptyRecord = errors.New("feature record is empty")

// Validate checks that a definition is scoreable.
func Validate(def types.ModelDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return errors.New("model name is required")
	}
	if strings.TrimSpace(def.Domain) == "" {
		return fmt.Errorf("model %s: domain is required", def.Name)
	}
	if def.Accuracy < 0 || def.Accuracy > 1 {
		return fmt.Errorf("model %s: accuracy %v out of range [0,1]", def.Name, def.Accuracy)
	}
	known := make(map[string]struct{}, len(def.Features))
	for _, f := range def.Features {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("model %s: empty feature name", def.Name)
		}
		if _, dup := known[f]; dup {
			return fmt.Errorf("model %s: duplicate feature %q", def.Name, f)
		}
		known[f] = struct{}{}
	}
	switch def.Kind {
	case types.KindLinear, types.KindLogistic:
		for f := range def.Weights {
			if _, ok := known[f]; !ok {
				return fmt.Errorf("model %s: weight for undeclared feature %q", def.Name, f)
			}
		}
		if th := def.Threshold; def.Kind == types.KindLogistic && th != nil && (*th < 0 || *th >= 1) {
			return fmt.Errorf("model %s: threshold %v out of range [0,1)", def.Name, *th)
		}
	case types.KindTree:
		if len(def.Nodes) == 0 {
			return fmt.Errorf("model %s: tree has no nodes", def.Name)
		}
		for i, n := range def.Nodes {
			if n.Leaf {
				continue
			}
			if _, ok := known[n.Feature]; !ok {
				return fmt.Errorf("model %s: node %d splits on undeclared feature %q", def.Name, i, n.Feature)
			}
			if n.Left <= i || n.Left >= len(def.Nodes) || n.Right <= i || n.Right >= len(def.Nodes) {
				return fmt.Errorf("model %s: node %d has invalid children (%d,%d)", def.Name, i, n.Left, n.Right)
			}
		}
	default:
		return fmt.Errorf("model %s: unknown kind %q", def.Name, def.Kind)
	}
	return nil
}

// Score evaluates a single record.
func Score(def types.ModelDefinition, rec types.FeatureRecord) (Result, error) {
	if len(rec) == 0 {
		return Result{}, ErrEmptyRecord
	}
	x, coverage := vectorize(def, rec)
	var res Result
	switch def.Kind {
	case types.KindLinear:
		y := linear(def, x)
		acc := def.Accuracy
		if acc == 0 {
			acc = 1
		}
		res = Result{Value: y, Confidence: coverage * acc}
	case types.KindLogistic:
		p := sigmoid(linear(def, x))
		th := defaultThreshold
		if def.Threshold != nil {
			th = *def.Threshold
		}
		label := 0.0
		if p >= th {
			label = 1
		}
		res = Result{Value: label, Confidence: coverage * math.Max(p, 1-p)}
	case types.KindTree:
		label, conf, err := walkTree(def, x)
		if err != nil {
			return Result{}, err
		}
		res = Result{Value: label, Confidence: coverage * conf}
	default:
		return Result{}, fmt.Errorf("unknown model kind %q", def.Kind)
	}
	if math.IsNaN(res.Value) || math.IsInf(res.Value, 0) {
		return Result{}, fmt.Errorf("model %s produced a non-finite prediction", def.Name)
	}
	res.Value = round6(res.Value)
	res.Confidence = round6(clamp01(res.Confidence))
	return res, nil
}

// vectorize resolves model features from the record, imputing defaults for
// missing ones, and applies per-feature scaling.
func vectorize(def types.ModelDefinition, rec types.FeatureRecord) (map[string]float64, float64) {
	x := make(map[string]float64, len(def.Features))
	present := 0
	for _, f := range def.Features {
		v, ok := rec[f]
		if ok {
			present++
		} else {
			v = def.Defaults[f]
		}
		if s := def.Scale[f]; s != 0 {
			v /= s
		}
		x[f] = v
	}
	if len(def.Features) == 0 {
		return x, 1
	}
	return x, float64(present) / float64(len(def.Features))
}

func linear(def types.ModelDefinition, x map[string]float64) float64 {
	sum := def.Bias
	// Iterate the declared feature order so float summation is stable.
	for _, f := range def.Features {
		sum += def.Weights[f] * x[f]
	}
	return sum
}

func walkTree(def types.ModelDefinition, x map[string]float64) (float64, float64, error) {
	idx := 0
	for steps := 0; steps <= len(def.Nodes); steps++ {
		if idx < 0 || idx >= len(def.Nodes) {
			return 0, 0, errors.New("invalid tree state")
		}
		node := def.Nodes[idx]
		if node.Leaf {
			conf := node.Confidence
			if conf == 0 {
				conf = 1
			}
			return node.Label, conf, nil
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0, 0, errors.New("tree walk did not reach a leaf")
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
