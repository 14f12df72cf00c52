package model

import (
	"fmt"
	"math"
)

const eulerGamma = 0.5772156649015329

type isolationParams struct {
	Trees      []treeParams `json:"trees"`
	MaxSamples int          `json:"max_samples"`
	Offset     float64      `json:"offset"`
}

// IsolationForest labels a point an outlier when its anomaly score, computed from the
// average isolation depth across trees, falls below the fitted offset.
type IsolationForest struct {
	trees      []*tree
	nFeatures  int
	maxSamples int
	offset     float64
}

func newIsolationForest(p isolationParams, nFeatures int) (*IsolationForest, error) {
	if len(p.Trees) == 0 {
		return nil, fmt.Errorf("%w: isolation forest has no trees", ErrInvalidArtifact)
	}
	if p.MaxSamples < 2 {
		return nil, fmt.Errorf("%w: max_samples must be at least 2", ErrInvalidArtifact)
	}
	trees := make([]*tree, 0, len(p.Trees))
	for i, tp := range p.Trees {
		t, err := newTree(tp, nFeatures, false, true)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, t)
	}
	return &IsolationForest{
		trees:      trees,
		nFeatures:  nFeatures,
		maxSamples: p.MaxSamples,
		offset:     p.Offset,
	}, nil
}

// Score returns the negated anomaly score in [-1, 0); lower is more abnormal.
func (m *IsolationForest) Score(features []float64) (float64, error) {
	if err := checkFeatures(features, m.nFeatures); err != nil {
		return 0, err
	}
	var depths float64
	for _, t := range m.trees {
		node, depth := t.leaf(features)
		depths += float64(depth) + averagePathLength(t.NodeSamples[node])
	}
	norm := float64(len(m.trees)) * averagePathLength(m.maxSamples)
	return -math.Pow(2, -depths/norm), nil
}

func (m *IsolationForest) Predict(features []float64) (float64, error) {
	score, err := m.Score(features)
	if err != nil {
		return 0, err
	}
	if score-m.offset < 0 {
		return LabelOutlier, nil
	}
	return LabelInlier, nil
}

// averagePathLength is the expected path length of an unsuccessful search in a
// binary search tree built from n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}
