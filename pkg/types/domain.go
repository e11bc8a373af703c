package types

// Problem types reported for a model.
const (
	ProblemClassification = "Classification"
	ProblemRegression     = "Regression"
)

// Model kinds understood by the scoring engine.
const (
	KindLinear   = "linear"
	KindLogistic = "logistic"
	KindTree     = "tree"
)

// FeatureRecord is one row of named numeric inputs to a prediction call.
type FeatureRecord map[string]float64

// TreeNode is one node of a decision-tree model. Nodes are addressed by index;
// node 0 is the root.
type TreeNode struct {
	Feature    string  `json:"feature,omitempty" yaml:"feature,omitempty" toml:"feature,omitempty"`
	Threshold  float64 `json:"threshold" yaml:"threshold" toml:"threshold"`
	Left       int     `json:"left" yaml:"left" toml:"left"`
	Right      int     `json:"right" yaml:"right" toml:"right"`
	Label      float64 `json:"label" yaml:"label" toml:"label"`
	Leaf       bool    `json:"leaf" yaml:"leaf" toml:"leaf"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty" toml:"confidence,omitempty"`
}

// ModelDefinition is a loadable model: the public descriptor fields plus the
// scoring parameters.
type ModelDefinition struct {
	Name           string             `json:"name" yaml:"name" toml:"name"`
	Domain         string             `json:"domain" yaml:"domain" toml:"domain"`
	Kind           string             `json:"kind" yaml:"kind" toml:"kind"`
	Version        string             `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Description    string             `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Accuracy       float64            `json:"accuracy,omitempty" yaml:"accuracy,omitempty" toml:"accuracy,omitempty"`
	SamplesTrained int                `json:"samples_trained,omitempty" yaml:"samples_trained,omitempty" toml:"samples_trained,omitempty"`
	Features       []string           `json:"features" yaml:"features" toml:"features"`
	Weights        map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty" toml:"weights,omitempty"`
	Bias           float64            `json:"bias,omitempty" yaml:"bias,omitempty" toml:"bias,omitempty"`
	// Threshold is the logistic decision cut-off; nil means 0.5.
	Threshold      *float64           `json:"threshold,omitempty" yaml:"threshold,omitempty" toml:"threshold,omitempty"`
	Defaults       map[string]float64 `json:"defaults,omitempty" yaml:"defaults,omitempty" toml:"defaults,omitempty"`
	Scale          map[string]float64 `json:"scale,omitempty" yaml:"scale,omitempty" toml:"scale,omitempty"`
	Nodes          []TreeNode         `json:"nodes,omitempty" yaml:"nodes,omitempty" toml:"nodes,omitempty"`
	// Source is the file the definition was loaded from; empty for built-ins.
	Source string `json:"-" yaml:"-" toml:"-"`
}

// ProblemType derives the reported problem type from the model kind.
func (d ModelDefinition) ProblemType() string {
	if d.Kind == KindLinear {
		return ProblemRegression
	}
	return ProblemClassification
}

// Descriptor projects the definition onto the public listing shape.
func (d ModelDefinition) Descriptor() Model {
	names := append([]string(nil), d.Features...)
	return Model{
		Name:           d.Name,
		Domain:         d.Domain,
		ProblemType:    d.ProblemType(),
		Kind:           d.Kind,
		Version:        d.Version,
		Description:    d.Description,
		Accuracy:       d.Accuracy,
		SamplesTrained: d.SamplesTrained,
		Features:       len(names),
		FeatureNames:   names,
	}
}

// Model describes a servable model for listing and discovery.
type Model struct {
	// Unique model name.
	// example: heart-risk-logit
	Name string `json:"name" example:"heart-risk-logit"`
	// Domain tag served by this model.
	// example: healthcare
	Domain string `json:"domain" example:"healthcare"`
	// Classification or Regression.
	// example: Classification
	ProblemType string `json:"problem_type" example:"Classification"`
	// Scoring kind (linear, logistic, tree).
	// example: logistic
	Kind string `json:"kind" example:"logistic"`
	// Model version string.
	// example: 1.2.0
	Version string `json:"version,omitempty" example:"1.2.0"`
	// Free-form description.
	Description string `json:"description,omitempty"`
	// Reported validation accuracy in [0,1].
	// example: 0.91
	Accuracy float64 `json:"accuracy" example:"0.91"`
	// Number of samples the model was trained on.
	// example: 12000
	SamplesTrained int `json:"samples_trained" example:"12000"`
	// Number of input features.
	// example: 12
	Features int `json:"features" example:"12"`
	// Names of the input features.
	FeatureNames []string `json:"feature_names"`
}
