package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cardio-risk/backend/internal/assessment"
	"github.com/cardio-risk/backend/internal/config"
	"github.com/cardio-risk/backend/internal/models"
)

func cmdAssess() *cli.Command {
	var modelCfg config.Model
	var req models.AssessmentRequest
	var (
		ageYears    int
		height      float64
		weight      float64
		systolic    int
		diastolic   int
		cholesterol int
		glucose     int
		gender      string
		asJSON      bool
	)

	defaults := assessment.DefaultFormValues()
	flags := []cli.Flag{
		&cli.IntFlag{Name: "age", Usage: "Age in years", Value: defaults.Age, Destination: &ageYears},
		&cli.StringFlag{Name: "gender", Usage: "Gender [male|female]", Value: defaults.Gender, Destination: &gender},
		&cli.FloatFlag{Name: "height", Usage: "Height in metres", Value: defaults.Height, Destination: &height},
		&cli.FloatFlag{Name: "weight", Usage: "Weight in kilograms", Value: defaults.Weight, Destination: &weight},
		&cli.IntFlag{Name: "systolic", Usage: "Systolic blood pressure", Value: defaults.Systolic, Destination: &systolic},
		&cli.IntFlag{Name: "diastolic", Usage: "Diastolic blood pressure", Value: defaults.Diastolic, Destination: &diastolic},
		&cli.IntFlag{Name: "cholesterol", Usage: "Cholesterol level 1-3", Value: defaults.Cholesterol, Destination: &cholesterol},
		&cli.IntFlag{Name: "glucose", Usage: "Glucose level 1-3", Value: defaults.Glucose, Destination: &glucose},
		&cli.BoolFlag{Name: "smoke", Usage: "Smokes", Destination: &req.Smoke},
		&cli.BoolFlag{Name: "alcohol", Usage: "Drinks alcohol", Destination: &req.Alcohol},
		&cli.BoolFlag{Name: "active", Usage: "Physically active", Destination: &req.Active},
		&cli.StringFlag{Name: "lang", Usage: "Output locale (defaults to --locale)", Destination: &req.Locale},
		&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON", Destination: &asJSON},
	}
	flags = append(flags, modelCfg.Flags()...)

	return &cli.Command{
		Name:    "assess",
		Aliases: []string{"a"},
		Usage:   "Run a single assessment and print the result",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			req.AgeYears = &ageYears
			req.Gender = models.Gender(gender)
			req.Height = &height
			req.Weight = &weight
			req.Systolic = &systolic
			req.Diastolic = &diastolic
			req.Cholesterol = &cholesterol
			req.Glucose = &glucose

			in, err := assessment.FromRequest(req)
			if err != nil {
				return err
			}

			model, catalogs, err := modelCfg.Load(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load model", goerr.V("location", modelCfg.Location))
			}

			svc := assessment.NewService(model, catalogs, nil)
			cat := catalogs.Match(req.Locale, "")
			result, err := svc.Assess(ctx, in, cat)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printResult(w, result, cat.Probability)
		},
	}
}

func printResult(w io.Writer, result *models.AssessmentResult, label string) error {
	if _, err := fmt.Fprintf(w, "%s %d %%\n%s\n", label, result.Percent, result.Headline); err != nil {
		return goerr.Wrap(err, "failed to write result")
	}
	for _, f := range result.RiskFactors {
		if _, err := fmt.Fprintf(w, "  - %s\n", f.Message); err != nil {
			return goerr.Wrap(err, "failed to write result")
		}
	}
	return nil
}
