package assessment_test

import (
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/cardio-risk/backend/internal/assessment"
	"github.com/cardio-risk/backend/internal/models"
)

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// healthyInput is a 30 year old man with normal readings.
func healthyInput() models.AssessmentInput {
	return models.AssessmentInput{
		AgeDays:     10950,
		Gender:      models.GenderMale,
		Height:      1.75,
		Weight:      80,
		Systolic:    120,
		Diastolic:   80,
		Cholesterol: 1,
		Glucose:     1,
		Smoke:       false,
		Alcohol:     false,
		Active:      true,
	}
}

func TestDeriveFeaturesHealthyExample(t *testing.T) {
	v := assessment.DeriveFeatures(healthyInput())

	gt.Array(t, v.Slice()).Length(assessment.FeatureCount)
	gt.Array(t, assessment.FeatureNames).Length(assessment.FeatureCount)

	gt.Value(t, v[0]).Equal(10950.0) // age in days
	gt.Value(t, v[1]).Equal(2.0)     // male
	gt.Value(t, v[2]).Equal(175.0)   // height cm
	gt.Value(t, v[3]).Equal(80.0)
	gt.Value(t, v[4]).Equal(120.0)
	gt.Value(t, v[5]).Equal(80.0)
	gt.Value(t, v[6]).Equal(1.0)
	gt.Value(t, v[7]).Equal(1.0)
	gt.Value(t, v[8]).Equal(0.0)
	gt.Value(t, v[9]).Equal(0.0)
	gt.Value(t, v[10]).Equal(1.0)
	gt.Bool(t, closeTo(v[11], 26.12, 0.01)).True() // BMI
	gt.Value(t, v[12]).Equal(30.0)                 // years
	gt.Bool(t, closeTo(v[13], 93.3, 1e-9)).True()  // average pressure
	gt.Bool(t, closeTo(v[14], 246.6, 1e-9)).True() // (93.3 + 30) * (1 + 1)
	gt.Value(t, v[15]).Equal(0.0)                  // stage
	gt.Bool(t, closeTo(v[16], 147.3, 1e-9)).True() // 30 + 93.3 + floor(24.66)
}

func TestDeriveFeaturesFemaleAndFlags(t *testing.T) {
	in := healthyInput()
	in.Gender = models.GenderFemale
	in.Smoke = true
	in.Alcohol = true
	in.Active = false
	in.AgeDays = 365*50 + 364

	v := assessment.DeriveFeatures(in)
	gt.Value(t, v[1]).Equal(1.0)
	gt.Value(t, v[8]).Equal(1.0)
	gt.Value(t, v[9]).Equal(1.0)
	gt.Value(t, v[10]).Equal(0.0)
	gt.Value(t, v[12]).Equal(50.0)
}

func TestDeriveFeaturesIsIdempotent(t *testing.T) {
	in := healthyInput()
	in.Systolic = 163
	in.Cholesterol = 3

	first := assessment.DeriveFeatures(in)
	second := assessment.DeriveFeatures(in)
	gt.Value(t, first).Equal(second)
}

func TestAveragePressure(t *testing.T) {
	tests := []struct {
		systolic, diastolic int
		want                float64
	}{
		{120, 80, 93.3},
		{140, 95, 110.0},
		{121, 80, 93.7},
		{185, 110, 135.0},
		{40, 20, 26.7},
	}

	for _, tt := range tests {
		got := assessment.AveragePressure(tt.systolic, tt.diastolic)
		if !closeTo(got, tt.want, 1e-9) {
			t.Errorf("AveragePressure(%d, %d) = %f, want %f", tt.systolic, tt.diastolic, got, tt.want)
		}
	}
}

func TestHypertensionStage(t *testing.T) {
	tests := []struct {
		systolic int
		want     int
	}{
		{40, 0},
		{120, 0},
		{139, 0},
		{140, 1},
		{159, 1},
		{160, 2},
		{179, 2},
		{180, 3},
		{185, 3},
		{270, 3},
	}

	for _, tt := range tests {
		got := assessment.HypertensionStage(tt.systolic)
		if got != tt.want {
			t.Errorf("HypertensionStage(%d) = %d, want %d", tt.systolic, got, tt.want)
		}
	}
}

func TestHypertensionStageIsMonotonic(t *testing.T) {
	prev := assessment.HypertensionStage(assessment.MinSystolic)
	for s := assessment.MinSystolic + 1; s <= assessment.MaxSystolic; s++ {
		cur := assessment.HypertensionStage(s)
		if cur < prev {
			t.Fatalf("stage decreased from %d to %d at systolic %d", prev, cur, s)
		}
		if cur < 0 || cur > 3 {
			t.Fatalf("stage %d out of range at systolic %d", cur, s)
		}
		prev = cur
	}
}
