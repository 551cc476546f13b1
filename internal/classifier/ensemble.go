package classifier

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// BoostingParams describe a gradient boosted ensemble of regression trees
// whose summed leaf values are a log-odds score.
type BoostingParams struct {
	NumFeatures int     `json:"n_features"`
	BaseScore   float64 `json:"base_score"`
	Trees       []Tree  `json:"trees"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split when Leaf is nil: rows with x[Feature] < Threshold go Left.
type Node struct {
	Feature   int      `json:"feature,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`
	Left      int      `json:"left,omitempty"`
	Right     int      `json:"right,omitempty"`
	Leaf      *float64 `json:"leaf,omitempty"`
}

type Ensemble struct {
	params BoostingParams
}

func NewEnsemble(p BoostingParams) (*Ensemble, error) {
	if p.NumFeatures <= 0 {
		return nil, goerr.Wrap(ErrInvalidArtifact, "n_features must be positive", goerr.V("n_features", p.NumFeatures))
	}
	if len(p.Trees) == 0 {
		return nil, goerr.Wrap(ErrInvalidArtifact, "ensemble has no trees")
	}
	for ti, tree := range p.Trees {
		if err := validateTree(tree, p.NumFeatures); err != nil {
			return nil, goerr.Wrap(err, "invalid tree", goerr.V("tree", ti))
		}
	}
	return &Ensemble{params: p}, nil
}

// validateTree requires children to come after their parent, which rules out cycles.
func validateTree(t Tree, numFeatures int) error {
	if len(t.Nodes) == 0 {
		return goerr.Wrap(ErrInvalidArtifact, "tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Leaf != nil {
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return goerr.Wrap(ErrInvalidArtifact, "split feature out of range",
				goerr.V("node", i), goerr.V("feature", n.Feature))
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return goerr.Wrap(ErrInvalidArtifact, "child index out of range",
					goerr.V("node", i), goerr.V("child", child))
			}
		}
	}
	return nil
}

func (m *Ensemble) Dim() int {
	return m.params.NumFeatures
}

func (t Tree) score(features []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf != nil {
			return *n.Leaf
		}
		if features[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (m *Ensemble) PredictProbability(_ context.Context, features []float64) (float64, error) {
	if err := checkDim(features, m.Dim()); err != nil {
		return 0, err
	}

	margin := m.params.BaseScore
	for _, t := range m.params.Trees {
		margin += t.score(features)
	}
	return sigmoid(margin), nil
}
