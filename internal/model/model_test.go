package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLinearRegressor_Predict(t *testing.T) {
	m, err := NewLinearRegressor([]float64{0.5, 0.25, 0.25}, 10)
	require.NoError(t, err)

	got, err := m.Predict([]float64{100, 200, 300})
	require.NoError(t, err)
	assert.InDelta(t, 10+50+50+75, got, 1e-9)

	_, err = m.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrFeatureMismatch)
}

func TestKMeans_NearestCentroid(t *testing.T) {
	m, err := NewKMeans([][]float64{{0, 0}, {10, 10}, {-10, 5}})
	require.NoError(t, err)

	tests := []struct {
		name     string
		features []float64
		want     float64
	}{
		{name: "origin", features: []float64{1, 1}, want: 0},
		{name: "upper right", features: []float64{9, 8}, want: 1},
		{name: "left", features: []float64{-8, 4}, want: 2},
		{name: "tie goes to lowest id", features: []float64{5, 5}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(tt.features)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStandardScaler_Transform(t *testing.T) {
	s, err := NewStandardScaler([]float64{50, 16, 2000}, []float64{25, 0, 1000})
	require.NoError(t, err)

	out, err := s.Transform([]float64{75, 32, 1000})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 16, -1}, out)
}

func TestZScoreDetector_Predict(t *testing.T) {
	d, err := NewZScoreDetector([]float64{1000}, []float64{50}, 3)
	require.NoError(t, err)

	label, err := d.Predict([]float64{1100})
	require.NoError(t, err)
	assert.Equal(t, LabelInlier, label)

	label, err = d.Predict([]float64{1200})
	require.NoError(t, err)
	assert.Equal(t, LabelOutlier, label)
}

const isolationArtifact = `{
  "kind": "isolation_forest",
  "version": "v1",
  "n_features": 1,
  "params": {
    "max_samples": 4,
    "offset": -0.5,
    "trees": [{
      "children_left":  [1, -1, -1],
      "children_right": [2, -1, -1],
      "feature":        [0, -2, -2],
      "threshold":      [100, -2, -2],
      "n_node_samples": [4, 1, 3]
    }]
  }
}`

func TestIsolationForest_Predict(t *testing.T) {
	p, info, err := LoadPredictor(writeArtifact(t, isolationArtifact))
	require.NoError(t, err)
	assert.Equal(t, KindIsolationForest, info.Kind)
	assert.Equal(t, 1, info.NFeatures)

	label, err := p.Predict([]float64{50})
	require.NoError(t, err)
	assert.Equal(t, LabelOutlier, label, "shallow isolation is an outlier")

	label, err = p.Predict([]float64{150})
	require.NoError(t, err)
	assert.Equal(t, LabelInlier, label)
}

func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(1))
	assert.Equal(t, 1.0, averagePathLength(2))
	assert.InDelta(t, 1.2074, averagePathLength(3), 1e-3)
}

func TestRandomForestRegressor_AveragesTrees(t *testing.T) {
	body := `{
	  "kind": "random_forest_regressor",
	  "n_features": 3,
	  "params": {"trees": [
	    {"children_left": [1,-1,-1], "children_right": [2,-1,-1], "feature": [0,-2,-2],
	     "threshold": [100,-2,-2], "value": [0,90,110]},
	    {"children_left": [-1], "children_right": [-1], "feature": [-2],
	     "threshold": [-2], "value": [120]}
	  ]}
	}`
	p, _, err := LoadPredictor(writeArtifact(t, body))
	require.NoError(t, err)

	got, err := p.Predict([]float64{105, 110, 105})
	require.NoError(t, err)
	assert.InDelta(t, 115.0, got, 1e-9)
}

func TestLoadPredictor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "malformed json",
			body:    `{"kind":`,
			wantErr: ErrInvalidArtifact,
		},
		{
			name:    "unknown kind",
			body:    `{"kind":"svm","params":{}}`,
			wantErr: ErrUnknownKind,
		},
		{
			name:    "declared features disagree",
			body:    `{"kind":"linear_regression","n_features":2,"params":{"coefficients":[1,2,3]}}`,
			wantErr: ErrInvalidArtifact,
		},
		{
			name:    "unknown params field",
			body:    `{"kind":"kmeans","params":{"centroids":[[1]],"extra":true}}`,
			wantErr: ErrInvalidArtifact,
		},
		{
			name:    "tree child out of range",
			body:    `{"kind":"random_forest_regressor","n_features":1,"params":{"trees":[{"children_left":[5],"children_right":[6],"feature":[0],"threshold":[1],"value":[1]}]}}`,
			wantErr: ErrInvalidArtifact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadPredictor(writeArtifact(t, tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadPredictor_MissingFile(t *testing.T) {
	_, _, err := LoadPredictor(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadTransformer(t *testing.T) {
	path := writeArtifact(t, `{"kind":"standard_scaler","version":"2024-06","params":{"mean":[1,2,3],"scale":[1,1,1]}}`)
	tr, info, err := LoadTransformer(path)
	require.NoError(t, err)
	assert.Equal(t, 3, info.NFeatures)
	assert.Equal(t, "2024-06", info.Version)

	out, err := tr.Transform([]float64{2, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, -1}, out)

	_, _, err = LoadTransformer(writeArtifact(t, `{"kind":"kmeans","params":{"centroids":[[1]]}}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}
