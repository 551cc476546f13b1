package assessment

import (
	"math"

	"github.com/cardio-risk/backend/internal/models"
)

// FeatureNames lists the classifier input columns in the order DeriveFeatures emits them.
var FeatureNames = []string{
	"age", "gender", "height", "weight", "ap_hi", "ap_lo",
	"cholesterol", "gluc", "smoke", "alco", "active",
	"mass_idx", "years", "avrg_ap", "aphi_chol_gluc", "ag_st", "ssz_risk",
}

// FeatureCount is the length of every feature vector.
const FeatureCount = 17

type FeatureVector [FeatureCount]float64

func (v FeatureVector) Slice() []float64 {
	return v[:]
}

// BodyMassIndex returns weight / height².
func BodyMassIndex(weight, height float64) float64 {
	return weight / (height * height)
}

// AveragePressure weights diastolic twice and rounds to one decimal,
// ties to even, matching how the model's training data was prepared.
func AveragePressure(systolic, diastolic int) float64 {
	avg := float64(2*diastolic+systolic) / 3
	return math.RoundToEven(avg*10) / 10
}

// HypertensionStage buckets systolic pressure:
// <140 → 0, 140–159 → 1, 160–179 → 2, ≥180 → 3.
func HypertensionStage(systolic int) int {
	switch {
	case systolic < 140:
		return 0
	case systolic < 160:
		return 1
	case systolic < 180:
		return 2
	default:
		return 3
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// DeriveFeatures maps one input record to the classifier's feature vector.
func DeriveFeatures(in models.AssessmentInput) FeatureVector {
	years := float64(in.AgeYears())
	avg := AveragePressure(in.Systolic, in.Diastolic)
	interaction := (avg + years) * float64(in.Cholesterol+in.Glucose)
	composite := years + avg + math.Floor(interaction/10)

	return FeatureVector{
		float64(in.AgeDays),
		float64(in.Gender.Code()),
		in.Height * 100,
		in.Weight,
		float64(in.Systolic),
		float64(in.Diastolic),
		float64(in.Cholesterol),
		float64(in.Glucose),
		boolFeature(in.Smoke),
		boolFeature(in.Alcohol),
		boolFeature(in.Active),
		BodyMassIndex(in.Weight, in.Height),
		years,
		avg,
		interaction,
		float64(HypertensionStage(in.Systolic)),
		composite,
	}
}
