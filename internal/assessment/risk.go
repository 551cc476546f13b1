package assessment

import (
	"math"

	"github.com/samber/lo"

	"github.com/cardio-risk/backend/internal/messages"
	"github.com/cardio-risk/backend/internal/models"
)

type riskRule struct {
	code  string
	fires func(in models.AssessmentInput) bool
}

// riskRules are evaluated independently; their order is the order messages are shown.
var riskRules = []riskRule{
	{messages.FactorCholesterol, func(in models.AssessmentInput) bool { return in.Cholesterol > 1 }},
	{messages.FactorSystolic, func(in models.AssessmentInput) bool { return in.Systolic > 130 }},
	{messages.FactorDiastolic, func(in models.AssessmentInput) bool { return in.Diastolic > 90 }},
	{messages.FactorWeight, func(in models.AssessmentInput) bool {
		return math.Floor(BodyMassIndex(in.Weight, in.Height)) > 30
	}},
	{messages.FactorGlucose, func(in models.AssessmentInput) bool { return in.Glucose > 2 }},
	{messages.FactorInactivity, func(in models.AssessmentInput) bool { return !in.Active }},
}

// RiskFactorCodes returns the codes of every rule that holds for in.
func RiskFactorCodes(in models.AssessmentInput) []string {
	return lo.FilterMap(riskRules, func(r riskRule, _ int) (string, bool) {
		return r.code, r.fires(in)
	})
}

// EvaluateRiskFactors returns one localized message per rule that holds.
// The result is empty, never nil, when no rule fires.
func EvaluateRiskFactors(in models.AssessmentInput, cat *messages.Catalog) []models.RiskFactor {
	return lo.Map(RiskFactorCodes(in), func(code string, _ int) models.RiskFactor {
		return models.RiskFactor{Code: code, Message: cat.Factor(code)}
	})
}
