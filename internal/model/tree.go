package model

import "fmt"

const leafNode = -1

// treeParams mirrors the flat node arrays of a fitted decision tree. Node 0 is the
// root; a node is a leaf when its left child is -1.
type treeParams struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value,omitempty"`
	NodeSamples   []int     `json:"n_node_samples,omitempty"`
}

type tree struct {
	treeParams
}

func newTree(p treeParams, nFeatures int, needValues, needSamples bool) (*tree, error) {
	n := len(p.ChildrenLeft)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty tree", ErrInvalidArtifact)
	}
	if len(p.ChildrenRight) != n || len(p.Feature) != n || len(p.Threshold) != n {
		return nil, fmt.Errorf("%w: tree arrays differ in length", ErrInvalidArtifact)
	}
	if needValues && len(p.Value) != n {
		return nil, fmt.Errorf("%w: tree needs %d leaf values", ErrInvalidArtifact, n)
	}
	if needSamples && len(p.NodeSamples) != n {
		return nil, fmt.Errorf("%w: tree needs %d node sample counts", ErrInvalidArtifact, n)
	}
	for i := 0; i < n; i++ {
		l, r := p.ChildrenLeft[i], p.ChildrenRight[i]
		if l == leafNode {
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return nil, fmt.Errorf("%w: node %d has invalid children", ErrInvalidArtifact, i)
		}
		if p.Feature[i] < 0 || p.Feature[i] >= nFeatures {
			return nil, fmt.Errorf("%w: node %d splits on feature %d", ErrInvalidArtifact, i, p.Feature[i])
		}
	}
	return &tree{treeParams: p}, nil
}

// leaf walks x down the tree and returns the leaf index and its depth.
func (t *tree) leaf(x []float64) (node, depth int) {
	for t.ChildrenLeft[node] != leafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
		depth++
	}
	return node, depth
}

type forestParams struct {
	Trees []treeParams `json:"trees"`
}

// RandomForestRegressor averages the leaf values of its trees.
type RandomForestRegressor struct {
	trees     []*tree
	nFeatures int
}

func newRandomForestRegressor(p forestParams, nFeatures int) (*RandomForestRegressor, error) {
	if len(p.Trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidArtifact)
	}
	trees := make([]*tree, 0, len(p.Trees))
	for i, tp := range p.Trees {
		t, err := newTree(tp, nFeatures, true, false)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, t)
	}
	return &RandomForestRegressor{trees: trees, nFeatures: nFeatures}, nil
}

func (m *RandomForestRegressor) Predict(features []float64) (float64, error) {
	if err := checkFeatures(features, m.nFeatures); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range m.trees {
		node, _ := t.leaf(features)
		sum += t.Value[node]
	}
	return sum / float64(len(m.trees)), nil
}
