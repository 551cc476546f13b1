package assessment

import (
	"embed"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/cardio-risk/backend/internal/messages"
	"github.com/cardio-risk/backend/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var formTemplate = template.Must(
	template.New("form.html").Funcs(template.FuncMap{"seq": seq}).ParseFS(templateFS, "templates/form.html"),
)

func seq(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

// FormValues is what the form shows in its widgets.
type FormValues struct {
	Age         int
	Height      float64
	Weight      float64
	Systolic    int
	Diastolic   int
	Cholesterol int
	Glucose     int
	Smoke       bool
	Alcohol     bool
	Active      bool
	Gender      string
}

// DefaultFormValues are the values a fresh form starts with.
func DefaultFormValues() FormValues {
	return FormValues{
		Age:         31,
		Height:      1.75,
		Weight:      80,
		Systolic:    120,
		Diastolic:   80,
		Cholesterol: 1,
		Glucose:     1,
		Gender:      string(models.GenderMale),
	}
}

// formValuesFrom keeps what the user submitted, even when it did not validate,
// so the page can be shown again with their choices.
func formValuesFrom(form url.Values) FormValues {
	v := DefaultFormValues()
	atoi := func(field string, dst *int) {
		if n, err := strconv.Atoi(form.Get(field)); err == nil {
			*dst = n
		}
	}
	atof := func(field string, dst *float64) {
		if f, err := strconv.ParseFloat(strings.Replace(form.Get(field), ",", ".", 1), 64); err == nil {
			*dst = f
		}
	}

	atoi("age", &v.Age)
	atof("height", &v.Height)
	atof("weight", &v.Weight)
	atoi("systolic", &v.Systolic)
	atoi("diastolic", &v.Diastolic)
	atoi("cholesterol", &v.Cholesterol)
	atoi("glucose", &v.Glucose)
	if g := form.Get("gender"); g != "" {
		v.Gender = strings.ToLower(g)
	}
	v.Smoke = form.Has("smoke")
	v.Alcohol = form.Has("alcohol")
	v.Active = form.Has("active")
	return v
}

type formView struct {
	Catalog      *messages.Catalog
	Locales      []string
	Values       FormValues
	Result       *models.AssessmentResult
	Error        string
	MinAge       int
	MaxAge       int
	MinSystolic  int
	MaxSystolic  int
	MinDiastolic int
	MaxDiastolic int
}

func renderForm(w io.Writer, cat *messages.Catalog, locales []string, values FormValues, result *models.AssessmentResult, errMsg string) error {
	return formTemplate.Execute(w, formView{
		Catalog:      cat,
		Locales:      locales,
		Values:       values,
		Result:       result,
		Error:        errMsg,
		MinAge:       MinAgeYears,
		MaxAge:       MaxAgeYears,
		MinSystolic:  MinSystolic,
		MaxSystolic:  MaxSystolic,
		MinDiastolic: MinDiastolic,
		MaxDiastolic: MaxDiastolic,
	})
}
