package model

import (
	"fmt"
	"math"
)

type zscoreParams struct {
	Mean      []float64 `json:"mean"`
	Std       []float64 `json:"std"`
	Threshold float64   `json:"threshold"`
}

// ZScoreDetector flags a vector as an outlier when any feature lies more than
// threshold standard deviations from its mean.
type ZScoreDetector struct {
	mean      []float64
	std       []float64
	threshold float64
}

func NewZScoreDetector(mean, std []float64, threshold float64) (*ZScoreDetector, error) {
	if len(mean) == 0 || len(mean) != len(std) {
		return nil, fmt.Errorf("%w: zscore mean/std must be non-empty and equal length", ErrInvalidArtifact)
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: zscore threshold must be positive", ErrInvalidArtifact)
	}
	return &ZScoreDetector{mean: mean, std: std, threshold: threshold}, nil
}

func (m *ZScoreDetector) Predict(features []float64) (float64, error) {
	if err := checkFeatures(features, len(m.mean)); err != nil {
		return 0, err
	}
	for i, x := range features {
		dev := math.Abs(x - m.mean[i])
		if m.std[i] == 0 {
			if dev > 0 {
				return LabelOutlier, nil
			}
			continue
		}
		if dev/m.std[i] > m.threshold {
			return LabelOutlier, nil
		}
	}
	return LabelInlier, nil
}
