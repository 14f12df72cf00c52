package model

import (
	"fmt"
	"math"
)

type kmeansParams struct {
	Centroids [][]float64 `json:"centroids"`
}

// KMeans assigns a vector to its nearest centroid by squared Euclidean distance.
// Ties go to the lowest cluster id.
type KMeans struct {
	centroids [][]float64
	nFeatures int
}

func NewKMeans(centroids [][]float64) (*KMeans, error) {
	if len(centroids) == 0 {
		return nil, fmt.Errorf("%w: kmeans needs at least one centroid", ErrInvalidArtifact)
	}
	n := len(centroids[0])
	if n == 0 {
		return nil, fmt.Errorf("%w: kmeans centroid is empty", ErrInvalidArtifact)
	}
	for i, c := range centroids {
		if len(c) != n {
			return nil, fmt.Errorf("%w: centroid %d has %d features, want %d", ErrInvalidArtifact, i, len(c), n)
		}
	}
	return &KMeans{centroids: centroids, nFeatures: n}, nil
}

func (m *KMeans) Predict(features []float64) (float64, error) {
	if err := checkFeatures(features, m.nFeatures); err != nil {
		return 0, err
	}
	best, bestDist := 0, math.Inf(1)
	for i, c := range m.centroids {
		var d float64
		for j, x := range features {
			diff := x - c[j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return float64(best), nil
}

func (m *KMeans) Clusters() int {
	return len(m.centroids)
}
