package assessment

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cardio-risk/backend/internal/models"
)

var ErrInvalidInput = goerr.New("invalid assessment input")

// Input ranges accepted at the boundary, the same ranges the form offers.
const (
	MinAgeYears  = 1
	MaxAgeYears  = 119
	MinAgeDays   = MinAgeYears * models.DaysPerYear
	MaxAgeDays   = (MaxAgeYears+1)*models.DaysPerYear - 1
	MinHeight    = 0.5
	MaxHeight    = 2.5
	MinWeight    = 40
	MaxWeight    = 200
	MinSystolic  = 40
	MaxSystolic  = 270
	MinDiastolic = 20
	MaxDiastolic = 160
	MinLevel     = 1
	MaxLevel     = 3
)

func invalid(field, reason string) error {
	return goerr.Wrap(ErrInvalidInput, fmt.Sprintf("%s %s", field, reason), goerr.V("field", field))
}

func checkIntRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return invalid(field, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return nil
}

func checkFloatRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return invalid(field, fmt.Sprintf("must be between %g and %g", lo, hi))
	}
	return nil
}

// Validate checks every field against the accepted ranges.
func Validate(in models.AssessmentInput) error {
	if err := checkIntRange("age_days", in.AgeDays, MinAgeDays, MaxAgeDays); err != nil {
		return err
	}
	if !in.Gender.Valid() {
		return invalid("gender", "must be 'male' or 'female'")
	}
	if err := checkFloatRange("height", in.Height, MinHeight, MaxHeight); err != nil {
		return err
	}
	if err := checkFloatRange("weight", in.Weight, MinWeight, MaxWeight); err != nil {
		return err
	}
	if err := checkIntRange("systolic", in.Systolic, MinSystolic, MaxSystolic); err != nil {
		return err
	}
	if err := checkIntRange("diastolic", in.Diastolic, MinDiastolic, MaxDiastolic); err != nil {
		return err
	}
	if err := checkIntRange("cholesterol", in.Cholesterol, MinLevel, MaxLevel); err != nil {
		return err
	}
	if err := checkIntRange("glucose", in.Glucose, MinLevel, MaxLevel); err != nil {
		return err
	}
	return nil
}

// FromRequest converts and validates a JSON API request.
func FromRequest(req models.AssessmentRequest) (models.AssessmentInput, error) {
	var in models.AssessmentInput

	switch {
	case req.AgeDays != nil:
		in.AgeDays = *req.AgeDays
	case req.AgeYears != nil:
		if err := checkIntRange("age_years", *req.AgeYears, MinAgeYears, MaxAgeYears); err != nil {
			return in, err
		}
		in.AgeDays = *req.AgeYears * models.DaysPerYear
	default:
		return in, invalid("age_days", "or age_years is required")
	}

	required := []struct {
		name string
		set  bool
	}{
		{"height", req.Height != nil},
		{"weight", req.Weight != nil},
		{"systolic", req.Systolic != nil},
		{"diastolic", req.Diastolic != nil},
		{"cholesterol", req.Cholesterol != nil},
		{"glucose", req.Glucose != nil},
	}
	for _, r := range required {
		if !r.set {
			return in, invalid(r.name, "is required")
		}
	}

	in.Gender = models.Gender(strings.ToLower(string(req.Gender)))
	in.Height = *req.Height
	in.Weight = *req.Weight
	in.Systolic = *req.Systolic
	in.Diastolic = *req.Diastolic
	in.Cholesterol = *req.Cholesterol
	in.Glucose = *req.Glucose
	in.Smoke = req.Smoke
	in.Alcohol = req.Alcohol
	in.Active = req.Active

	if err := Validate(in); err != nil {
		return in, err
	}
	return in, nil
}

// FromForm converts and validates a submitted HTML form. The form asks for
// age in whole years; checkboxes are present only when ticked.
func FromForm(form url.Values) (models.AssessmentInput, error) {
	var in models.AssessmentInput

	years, err := formInt(form, "age")
	if err != nil {
		return in, err
	}
	if err := checkIntRange("age", years, MinAgeYears, MaxAgeYears); err != nil {
		return in, err
	}
	in.AgeDays = years * models.DaysPerYear

	if in.Height, err = formFloat(form, "height"); err != nil {
		return in, err
	}
	if in.Weight, err = formFloat(form, "weight"); err != nil {
		return in, err
	}
	if in.Systolic, err = formInt(form, "systolic"); err != nil {
		return in, err
	}
	if in.Diastolic, err = formInt(form, "diastolic"); err != nil {
		return in, err
	}
	if in.Cholesterol, err = formInt(form, "cholesterol"); err != nil {
		return in, err
	}
	if in.Glucose, err = formInt(form, "glucose"); err != nil {
		return in, err
	}

	in.Gender = models.Gender(strings.ToLower(form.Get("gender")))
	in.Smoke = form.Has("smoke")
	in.Alcohol = form.Has("alcohol")
	in.Active = form.Has("active")

	if err := Validate(in); err != nil {
		return in, err
	}
	return in, nil
}

func formInt(form url.Values, field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(form.Get(field)))
	if err != nil {
		return 0, invalid(field, "must be a whole number")
	}
	return v, nil
}

func formFloat(form url.Values, field string) (float64, error) {
	raw := strings.Replace(strings.TrimSpace(form.Get(field)), ",", ".", 1)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalid(field, "must be a number")
	}
	return v, nil
}
