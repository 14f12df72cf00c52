package model

import "fmt"

type linearParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LinearRegressor predicts dot(coefficients, x) + intercept.
type LinearRegressor struct {
	coefficients []float64
	intercept    float64
}

func NewLinearRegressor(coefficients []float64, intercept float64) (*LinearRegressor, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("%w: linear regression needs coefficients", ErrInvalidArtifact)
	}
	coef := make([]float64, len(coefficients))
	copy(coef, coefficients)
	return &LinearRegressor{coefficients: coef, intercept: intercept}, nil
}

func (m *LinearRegressor) Predict(features []float64) (float64, error) {
	if err := checkFeatures(features, len(m.coefficients)); err != nil {
		return 0, err
	}
	y := m.intercept
	for i, c := range m.coefficients {
		y += c * features[i]
	}
	return y, nil
}

func (m *LinearRegressor) NFeatures() int {
	return len(m.coefficients)
}
