package classifier

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// LogisticParams are the fitted parameters of a logistic regression.
// Mean and Scale, when present, standardize each feature before weighting.
type LogisticParams struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Mean         []float64 `json:"mean,omitempty"`
	Scale        []float64 `json:"scale,omitempty"`
}

type Logistic struct {
	params LogisticParams
}

func NewLogistic(p LogisticParams) (*Logistic, error) {
	n := len(p.Coefficients)
	if n == 0 {
		return nil, goerr.Wrap(ErrInvalidArtifact, "logistic model has no coefficients")
	}
	if p.Mean != nil && len(p.Mean) != n {
		return nil, goerr.Wrap(ErrInvalidArtifact, "mean length differs from coefficients",
			goerr.V("mean", len(p.Mean)), goerr.V("coefficients", n))
	}
	if p.Scale != nil {
		if len(p.Scale) != n {
			return nil, goerr.Wrap(ErrInvalidArtifact, "scale length differs from coefficients",
				goerr.V("scale", len(p.Scale)), goerr.V("coefficients", n))
		}
		for i, s := range p.Scale {
			if s == 0 {
				return nil, goerr.Wrap(ErrInvalidArtifact, "zero scale", goerr.V("index", i))
			}
		}
	}
	return &Logistic{params: p}, nil
}

func (m *Logistic) Dim() int {
	return len(m.params.Coefficients)
}

func (m *Logistic) PredictProbability(_ context.Context, features []float64) (float64, error) {
	if err := checkDim(features, m.Dim()); err != nil {
		return 0, err
	}

	z := m.params.Intercept
	for i, x := range features {
		if m.params.Mean != nil {
			x -= m.params.Mean[i]
		}
		if m.params.Scale != nil {
			x /= m.params.Scale[i]
		}
		z += m.params.Coefficients[i] * x
	}
	return sigmoid(z), nil
}
