package artifact

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Forest(t *testing.T) {
	a, err := Load(filepath.Join("testdata", "forest.json"))
	require.NoError(t, err)

	cols := a.Columns()
	require.Len(t, cols, 7)
	assert.Equal(t, "relationship_degree", cols[0])

	// degree 2, repair
	p, err := a.PredictProba([]float64{2, 1, 0, 0, 1, 0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.45, p, 1e-9)

	// degree 2, cleaning
	p, err = a.PredictProba([]float64{2, 0, 1, 0, 1, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p, 1e-9)

	// degree 1 goes left in the first tree
	p, err = a.PredictProba([]float64{1, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.45, p, 1e-9)
}

func TestColumns_ReturnsCopy(t *testing.T) {
	a, err := NewLogistic([]string{"a", "b"}, []float64{1, 1}, 0)
	require.NoError(t, err)

	cols := a.Columns()
	cols[0] = "mutated"
	assert.Equal(t, "a", a.Columns()[0])
}

func TestLogistic(t *testing.T) {
	a, err := Parse([]byte(`{
		"feature_columns": ["relationship_degree", "category_repair"],
		"model": {"type": "logistic", "coefficients": [-0.5, 1.0], "intercept": 0.0}
	}`))
	require.NoError(t, err)

	p, err := a.PredictProba([]float64{2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)

	p, err = a.PredictProba([]float64{0, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-3)), p, 1e-9)
}

func TestPredictProba_LengthMismatch(t *testing.T) {
	a, err := NewLogistic([]string{"a", "b"}, []float64{1, 1}, 0)
	require.NoError(t, err)

	_, err = a.PredictProba([]float64{1})
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":           `{`,
		"no columns":         `{"feature_columns": [], "model": {"type": "logistic"}}`,
		"unknown type":       `{"feature_columns": ["a"], "model": {"type": "svm"}}`,
		"coefficient count":  `{"feature_columns": ["a", "b"], "model": {"type": "logistic", "coefficients": [1]}}`,
		"no trees":           `{"feature_columns": ["a"], "model": {"type": "forest", "trees": []}}`,
		"empty tree":         `{"feature_columns": ["a"], "model": {"type": "forest", "trees": [{"nodes": []}]}}`,
		"feature range":      `{"feature_columns": ["a"], "model": {"type": "forest", "trees": [{"nodes": [{"feature": 3, "left": 1, "right": 2}, {"left": -1}, {"left": -1}]}]}}`,
		"backwards child":    `{"feature_columns": ["a"], "model": {"type": "forest", "trees": [{"nodes": [{"feature": 0, "left": 0, "right": 1}, {"left": -1}]}]}}`,
		"leaf out of range":  `{"feature_columns": ["a"], "model": {"type": "forest", "trees": [{"nodes": [{"left": -1, "value": 1.5}]}]}}`,
		"child out of range": `{"feature_columns": ["a"], "model": {"type": "forest", "trees": [{"nodes": [{"feature": 0, "left": 1, "right": 9}, {"left": -1}]}]}}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.ErrorIs(t, err, ErrInvalidArtifact)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
