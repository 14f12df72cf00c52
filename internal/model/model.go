// Package model holds the pre-trained artifacts the gateway serves. Every artifact is
// loaded once from a JSON envelope and exposed through a single-method capability
// interface; the learned parameters themselves are produced elsewhere.
package model

import (
	"errors"
	"fmt"
)

var (
	ErrFeatureMismatch = errors.New("feature vector length mismatch")
	ErrUnknownKind     = errors.New("unknown model kind")
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// Artifact kinds understood by the loader.
const (
	KindLinearRegression      = "linear_regression"
	KindRandomForestRegressor = "random_forest_regressor"
	KindIsolationForest       = "isolation_forest"
	KindZScore                = "zscore"
	KindKMeans                = "kmeans"
	KindStandardScaler        = "standard_scaler"
)

// Anomaly detector labels.
const (
	LabelInlier  = 1.0
	LabelOutlier = -1.0
)

// Predictor maps one feature vector to a scalar: a regression value, a class label
// or a cluster id depending on the artifact.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// Transformer maps one feature vector to another of the same length.
type Transformer interface {
	Transform(features []float64) ([]float64, error)
}

// Info describes a loaded artifact.
type Info struct {
	Kind      string `json:"kind"`
	Version   string `json:"version,omitempty"`
	NFeatures int    `json:"n_features"`
	Path      string `json:"path,omitempty"`
}

func checkFeatures(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, len(features), want)
	}
	return nil
}
