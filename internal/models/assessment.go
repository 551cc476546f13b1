package models

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Code returns the numeric gender code the classifier was trained on.
func (g Gender) Code() int {
	if g == GenderFemale {
		return 1
	}
	return 2
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// DaysPerYear converts between the form's age in years and the model's age in days.
const DaysPerYear = 365

// AssessmentInput is the immutable set of measurements for one assessment.
// Every field is health data and is redacted from logs.
type AssessmentInput struct {
	AgeDays     int     `json:"age_days" masq:"secret"`
	Gender      Gender  `json:"gender" masq:"secret"`
	Height      float64 `json:"height" masq:"secret"`
	Weight      float64 `json:"weight" masq:"secret"`
	Systolic    int     `json:"systolic" masq:"secret"`
	Diastolic   int     `json:"diastolic" masq:"secret"`
	Cholesterol int     `json:"cholesterol" masq:"secret"`
	Glucose     int     `json:"glucose" masq:"secret"`
	Smoke       bool    `json:"smoke" masq:"secret"`
	Alcohol     bool    `json:"alcohol" masq:"secret"`
	Active      bool    `json:"active" masq:"secret"`
}

// AgeYears is the completed number of years in AgeDays.
func (in AssessmentInput) AgeYears() int {
	return in.AgeDays / DaysPerYear
}

type RiskFactor struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AssessmentResult struct {
	Probability float64      `json:"probability"`
	Percent     int          `json:"percent"`
	Elevated    bool         `json:"elevated"`
	Headline    string       `json:"headline"`
	RiskFactors []RiskFactor `json:"risk_factors"`
	Locale      string       `json:"locale"`
}

// ── API Request/Response Types ────────────────────────────

// AssessmentRequest is the JSON body of POST /api/v1/assessments.
// Either AgeDays or AgeYears must be set; AgeDays wins when both are.
type AssessmentRequest struct {
	AgeDays     *int     `json:"age_days,omitempty"`
	AgeYears    *int     `json:"age_years,omitempty"`
	Gender      Gender   `json:"gender"`
	Height      *float64 `json:"height"`
	Weight      *float64 `json:"weight"`
	Systolic    *int     `json:"systolic"`
	Diastolic   *int     `json:"diastolic"`
	Cholesterol *int     `json:"cholesterol"`
	Glucose     *int     `json:"glucose"`
	Smoke       bool     `json:"smoke"`
	Alcohol     bool     `json:"alcohol"`
	Active      bool     `json:"active"`
	Locale      string   `json:"locale,omitempty"`
}
