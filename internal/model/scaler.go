package model

import "fmt"

type scalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// StandardScaler centres each feature on its mean and divides by its scale.
// A zero scale leaves the centred value unscaled.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 || len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: scaler mean/scale must be non-empty and equal length", ErrInvalidArtifact)
	}
	s := make([]float64, len(scale))
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s[i] = v
	}
	return &StandardScaler{mean: mean, scale: s}, nil
}

func (m *StandardScaler) Transform(features []float64) ([]float64, error) {
	if err := checkFeatures(features, len(m.mean)); err != nil {
		return nil, err
	}
	out := make([]float64, len(features))
	for i, x := range features {
		out[i] = (x - m.mean[i]) / m.scale[i]
	}
	return out, nil
}
