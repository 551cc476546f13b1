package classifier_test

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/gt"

	"github.com/cardio-risk/backend/internal/classifier"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLogisticPredictProbability(t *testing.T) {
	ctx := context.Background()

	m, err := classifier.NewLogistic(classifier.LogisticParams{
		Intercept:    0,
		Coefficients: []float64{0, 0, 0},
	})
	gt.NoError(t, err).Required()

	p, err := m.PredictProbability(ctx, []float64{5, -3, 100})
	gt.NoError(t, err).Required()
	gt.Bool(t, almostEqual(p, 0.5)).True()

	// z = 1 + 2*((4-2)/2) = 3
	m, err = classifier.NewLogistic(classifier.LogisticParams{
		Intercept:    1,
		Coefficients: []float64{2},
		Mean:         []float64{2},
		Scale:        []float64{2},
	})
	gt.NoError(t, err).Required()

	p, err = m.PredictProbability(ctx, []float64{4})
	gt.NoError(t, err).Required()
	gt.Bool(t, almostEqual(p, 1/(1+math.Exp(-3)))).True()
}

func TestLogisticExtremeMarginsStayInRange(t *testing.T) {
	m, err := classifier.NewLogistic(classifier.LogisticParams{Coefficients: []float64{1}})
	gt.NoError(t, err).Required()

	for _, x := range []float64{-1e6, -800, 0, 800, 1e6} {
		p, err := m.PredictProbability(context.Background(), []float64{x})
		gt.NoError(t, err).Required()
		gt.Bool(t, p >= 0 && p <= 1).True()
		gt.Bool(t, math.IsNaN(p)).False()
	}
}

func TestLogisticRejectsBadParams(t *testing.T) {
	_, err := classifier.NewLogistic(classifier.LogisticParams{})
	gt.Error(t, err).Is(classifier.ErrInvalidArtifact)

	_, err = classifier.NewLogistic(classifier.LogisticParams{
		Coefficients: []float64{1, 2},
		Mean:         []float64{1},
	})
	gt.Error(t, err).Is(classifier.ErrInvalidArtifact)

	_, err = classifier.NewLogistic(classifier.LogisticParams{
		Coefficients: []float64{1},
		Scale:        []float64{0},
	})
	gt.Error(t, err).Is(classifier.ErrInvalidArtifact)
}

func TestPredictDimensionMismatch(t *testing.T) {
	m, err := classifier.NewLogistic(classifier.LogisticParams{Coefficients: []float64{1, 2, 3}})
	gt.NoError(t, err).Required()

	_, err = m.PredictProbability(context.Background(), []float64{1, 2})
	gt.Error(t, err).Is(classifier.ErrDimensionMismatch)
}

func leaf(v float64) *float64 { return &v }

func TestEnsemblePredictProbability(t *testing.T) {
	// One stump on feature 1 (systolic-like): below 140 → -1, otherwise +1.
	m, err := classifier.NewEnsemble(classifier.BoostingParams{
		NumFeatures: 2,
		BaseScore:   0.5,
		Trees: []classifier.Tree{
			{Nodes: []classifier.Node{
				{Feature: 1, Threshold: 140, Left: 1, Right: 2},
				{Leaf: leaf(-1)},
				{Leaf: leaf(1)},
			}},
			{Nodes: []classifier.Node{{Leaf: leaf(-0.5)}}},
		},
	})
	gt.NoError(t, err).Required()

	low, err := m.PredictProbability(context.Background(), []float64{0, 120})
	gt.NoError(t, err).Required()
	gt.Bool(t, almostEqual(low, 1/(1+math.Exp(1)))).True()

	// Threshold itself goes right.
	high, err := m.PredictProbability(context.Background(), []float64{0, 140})
	gt.NoError(t, err).Required()
	gt.Bool(t, almostEqual(high, 1/(1+math.Exp(-1)))).True()

	_, err = m.PredictProbability(context.Background(), []float64{0})
	gt.Error(t, err).Is(classifier.ErrDimensionMismatch)
}

func TestEnsembleRejectsMalformedTrees(t *testing.T) {
	tests := []struct {
		name   string
		params classifier.BoostingParams
	}{
		{
			name:   "no features",
			params: classifier.BoostingParams{Trees: []classifier.Tree{{Nodes: []classifier.Node{{Leaf: leaf(0)}}}}},
		},
		{
			name:   "no trees",
			params: classifier.BoostingParams{NumFeatures: 1},
		},
		{
			name: "feature out of range",
			params: classifier.BoostingParams{NumFeatures: 1, Trees: []classifier.Tree{{Nodes: []classifier.Node{
				{Feature: 3, Left: 1, Right: 2}, {Leaf: leaf(0)}, {Leaf: leaf(1)},
			}}}},
		},
		{
			name: "child points backwards",
			params: classifier.BoostingParams{NumFeatures: 1, Trees: []classifier.Tree{{Nodes: []classifier.Node{
				{Feature: 0, Left: 0, Right: 1}, {Leaf: leaf(0)},
			}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := classifier.NewEnsemble(tt.params)
			gt.Error(t, err).Is(classifier.ErrInvalidArtifact)
		})
	}
}

const logisticArtifact = `{
	"name": "tiny",
	"kind": "logistic",
	"features": ["a", "b"],
	"logistic": {"intercept": 0, "coefficients": [1, -1]}
}`

func TestDecode(t *testing.T) {
	m, err := classifier.Decode([]byte(logisticArtifact), []string{"a", "b"})
	gt.NoError(t, err).Required()
	gt.Value(t, m.Info.Name).Equal("tiny")
	gt.Value(t, m.Info.Kind).Equal(classifier.KindLogistic)
	gt.Value(t, m.Info.Features).Equal([]string{"a", "b"})

	p, err := m.PredictProbability(context.Background(), []float64{3, 3})
	gt.NoError(t, err).Required()
	gt.Bool(t, almostEqual(p, 0.5)).True()
}

func TestDecodeErrors(t *testing.T) {
	_, err := classifier.Decode([]byte(`{not json`), nil)
	gt.Error(t, err).Is(classifier.ErrInvalidArtifact)

	_, err = classifier.Decode([]byte(`{"kind": "random_forest"}`), nil)
	gt.Error(t, err).Is(classifier.ErrUnknownKind)

	_, err = classifier.Decode([]byte(`{"kind": "logistic"}`), nil)
	gt.Error(t, err).Is(classifier.ErrInvalidArtifact)

	_, err = classifier.Decode([]byte(logisticArtifact), []string{"a", "b", "c"})
	gt.Error(t, err).Is(classifier.ErrDimensionMismatch)

	_, err = classifier.Decode([]byte(logisticArtifact), []string{"a", "c"})
	gt.Error(t, err).Is(classifier.ErrFeatureMismatch)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	gt.NoError(t, os.WriteFile(path, []byte(logisticArtifact), 0o600)).Required()

	src, err := classifier.NewSource(context.Background(), path)
	gt.NoError(t, err).Required()
	gt.Value(t, src.Location()).Equal(path)

	m, err := classifier.Load(context.Background(), src, []string{"a", "b"})
	gt.NoError(t, err).Required()
	gt.Value(t, m.Info.Source).Equal(path)
}

func TestLoadMissingFile(t *testing.T) {
	src := classifier.NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	_, err := classifier.Load(context.Background(), src, nil)
	gt.Value(t, err).NotNil()
}

type fakeS3 struct {
	body   string
	bucket string
	key    string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = *in.Bucket, *in.Key
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestLoadFromS3(t *testing.T) {
	client := &fakeS3{body: logisticArtifact}
	src := classifier.NewS3Source(client, "models", "cardio/model.json")
	gt.Value(t, src.Location()).Equal("s3://models/cardio/model.json")

	m, err := classifier.Load(context.Background(), src, []string{"a", "b"})
	gt.NoError(t, err).Required()
	gt.Value(t, client.bucket).Equal("models")
	gt.Value(t, client.key).Equal("cardio/model.json")
	gt.Value(t, m.Info.Source).Equal("s3://models/cardio/model.json")
}

func TestNewSourceRejectsBadLocations(t *testing.T) {
	for _, loc := range []string{"", "s3://", "s3://bucket", "s3://bucket/"} {
		_, err := classifier.NewSource(context.Background(), loc)
		gt.Value(t, err).NotNil()
	}
}
