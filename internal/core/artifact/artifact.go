// Package artifact loads the frozen success classifier produced by the
// offline training job and evaluates it.
//
// The file is JSON:
//
//	{
//	  "feature_columns": ["relationship_degree", "category_repair", ...],
//	  "model": {"type": "forest", "trees": [{"nodes": [...]}]}
//	}
//
// or, for a linear model,
//
//	"model": {"type": "logistic", "coefficients": [...], "intercept": -1.2}
//
// Tree nodes are stored flat; node 0 is the root and a node with left == -1
// is a leaf whose value is the positive-class probability.
package artifact

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrInvalidArtifact = errors.New("invalid classifier artifact")

// Artifact is immutable after Load and safe for concurrent use.
type Artifact struct {
	columns   []string
	predictor predictor
}

type predictor interface {
	predict(x []float64) (float64, error)
}

type fileFormat struct {
	FeatureColumns []string   `json:"feature_columns"`
	Model          modelBlock `json:"model"`
}

type modelBlock struct {
	Type         string    `json:"type"`
	Trees        []Tree    `json:"trees,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact '%s': %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Artifact, error) {
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if len(f.FeatureColumns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", ErrInvalidArtifact)
	}

	switch f.Model.Type {
	case "forest":
		return NewForest(f.FeatureColumns, f.Model.Trees)
	case "logistic":
		return NewLogistic(f.FeatureColumns, f.Model.Coefficients, f.Model.Intercept)
	default:
		return nil, fmt.Errorf("%w: unknown model type %q", ErrInvalidArtifact, f.Model.Type)
	}
}

// NewForest validates every tree against the column count.
func NewForest(columns []string, trees []Tree) (*Artifact, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidArtifact)
	}
	for i, t := range trees {
		if err := t.validate(len(columns)); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, i, err)
		}
	}
	return &Artifact{columns: append([]string(nil), columns...), predictor: forest(trees)}, nil
}

func NewLogistic(columns []string, coefficients []float64, intercept float64) (*Artifact, error) {
	if len(coefficients) != len(columns) {
		return nil, fmt.Errorf("%w: %d coefficients for %d columns", ErrInvalidArtifact, len(coefficients), len(columns))
	}
	return &Artifact{
		columns:   append([]string(nil), columns...),
		predictor: logistic{weights: append([]float64(nil), coefficients...), intercept: intercept},
	}, nil
}

// Columns returns the ordered feature names the model expects.
func (a *Artifact) Columns() []string {
	return append([]string(nil), a.columns...)
}

// PredictProba returns the positive-class probability for one encoded row.
func (a *Artifact) PredictProba(x []float64) (float64, error) {
	if len(x) != len(a.columns) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(x), len(a.columns))
	}
	p, err := a.predictor.predict(x)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("model produced probability %v outside [0,1]", p)
	}
	return p, nil
}

type forest []Tree

func (f forest) predict(x []float64) (float64, error) {
	votes := make([]float64, len(f))
	for i, t := range f {
		v, err := t.leaf(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		votes[i] = v
	}
	return stat.Mean(votes, nil), nil
}

func (t Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Left == -1 {
			if n.Value < 0 || n.Value > 1 {
				return fmt.Errorf("leaf %d value %v outside [0,1]", i, n.Value)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d uses feature %d of %d", i, n.Feature, nFeatures)
		}
		// children always come after their parent, which also rules out cycles
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

// leaf walks the tree; samples with x[feature] <= threshold go left.
func (t Tree) leaf(x []float64) (float64, error) {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[i]
		if n.Left == -1 {
			return n.Value, nil
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return 0, errors.New("tree walk did not reach a leaf")
}

type logistic struct {
	weights   []float64
	intercept float64
}

func (l logistic) predict(x []float64) (float64, error) {
	z := floats.Dot(l.weights, x) + l.intercept
	return 1 / (1 + math.Exp(-z)), nil
}
