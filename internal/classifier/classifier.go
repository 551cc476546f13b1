package classifier

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cardio-risk/backend/internal/models"
)

// Classifier is a probabilistic binary classifier.
type Classifier interface {
	// PredictProbability returns P(positive class) in [0,1].
	PredictProbability(ctx context.Context, features []float64) (float64, error)
}

var (
	ErrDimensionMismatch = goerr.New("feature vector does not match model input dimension")
	ErrFeatureMismatch   = goerr.New("model features do not match derived features")
	ErrUnknownKind       = goerr.New("unknown model kind")
	ErrInvalidArtifact   = goerr.New("invalid model artifact")
)

const (
	KindLogistic         = "logistic"
	KindGradientBoosting = "gradient_boosting"
)

// Artifact is the serialized form of a trained model.
type Artifact struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Features []string        `json:"features,omitempty"`
	Logistic *LogisticParams `json:"logistic,omitempty"`
	Boosting *BoostingParams `json:"gradient_boosting,omitempty"`
}

// Model is a loaded classifier together with where it came from.
type Model struct {
	Classifier
	Info models.ModelInfo
}

// Decode parses an artifact and builds its classifier. When expected is
// non-empty the model must take exactly those features in that order.
func Decode(data []byte, expected []string) (*Model, error) {
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, goerr.Wrap(ErrInvalidArtifact, "failed to parse model artifact", goerr.V("cause", err.Error()))
	}

	var (
		clf Classifier
		dim int
		err error
	)
	switch art.Kind {
	case KindLogistic:
		if art.Logistic == nil {
			return nil, goerr.Wrap(ErrInvalidArtifact, "logistic parameters are missing", goerr.V("name", art.Name))
		}
		var m *Logistic
		m, err = NewLogistic(*art.Logistic)
		if m != nil {
			clf, dim = m, m.Dim()
		}
	case KindGradientBoosting:
		if art.Boosting == nil {
			return nil, goerr.Wrap(ErrInvalidArtifact, "gradient boosting parameters are missing", goerr.V("name", art.Name))
		}
		var m *Ensemble
		m, err = NewEnsemble(*art.Boosting)
		if m != nil {
			clf, dim = m, m.Dim()
		}
	default:
		return nil, goerr.Wrap(ErrUnknownKind, "cannot build classifier", goerr.V("kind", art.Kind))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build classifier", goerr.V("name", art.Name), goerr.V("kind", art.Kind))
	}

	if len(expected) > 0 {
		if dim != len(expected) {
			return nil, goerr.Wrap(ErrDimensionMismatch, "model input dimension differs",
				goerr.V("model", dim), goerr.V("expected", len(expected)))
		}
		if len(art.Features) > 0 && !equalNames(art.Features, expected) {
			return nil, goerr.Wrap(ErrFeatureMismatch, "model was trained on different columns",
				goerr.V("model", art.Features), goerr.V("expected", expected))
		}
	}

	features := art.Features
	if len(features) == 0 {
		features = expected
	}

	return &Model{
		Classifier: clf,
		Info: models.ModelInfo{
			Name:     art.Name,
			Kind:     art.Kind,
			Features: features,
			LoadedAt: time.Now().UTC(),
		},
	}, nil
}

// Load fetches an artifact from location and decodes it.
func Load(ctx context.Context, src Source, expected []string) (*Model, error) {
	data, err := src.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read model artifact", goerr.V("location", src.Location()))
	}

	m, err := Decode(data, expected)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode model artifact", goerr.V("location", src.Location()))
	}
	m.Info.Source = src.Location()
	return m, nil
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func checkDim(features []float64, dim int) error {
	if len(features) != dim {
		return goerr.Wrap(ErrDimensionMismatch, "cannot predict",
			goerr.V("got", len(features)), goerr.V("want", dim))
	}
	return nil
}
