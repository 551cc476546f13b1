package assessment

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardio-risk/backend/internal/classifier"
	"github.com/cardio-risk/backend/internal/logging"
	"github.com/cardio-risk/backend/internal/messages"
	"github.com/cardio-risk/backend/internal/models"
	"github.com/cardio-risk/backend/internal/telemetry"
)

// ElevatedThreshold is the probability above which risk factors are shown.
// A probability exactly equal to it is not elevated.
const ElevatedThreshold = 0.5

type Service struct {
	classifier  classifier.Classifier
	catalogs    *messages.Catalogs
	instruments *telemetry.Instruments
}

func NewService(clf classifier.Classifier, catalogs *messages.Catalogs, instruments *telemetry.Instruments) *Service {
	return &Service{
		classifier:  clf,
		catalogs:    catalogs,
		instruments: instruments,
	}
}

func (s *Service) Catalogs() *messages.Catalogs {
	return s.catalogs
}

// Assess runs the full pipeline for one input in the given locale.
func (s *Service) Assess(ctx context.Context, in models.AssessmentInput, cat *messages.Catalog) (*models.AssessmentResult, error) {
	if cat == nil {
		cat = s.catalogs.Default()
	}

	ctx, span := telemetry.Tracer().Start(ctx, "assessment.Assess")
	defer span.End()

	logging.From(ctx).Debug("assessing", "input", in, "locale", cat.Locale)

	features := DeriveFeatures(in)
	probability, err := s.classifier.PredictProbability(ctx, features.Slice())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prediction failed")
		if s.instruments != nil {
			s.instruments.Failures.Add(ctx, 1)
		}
		return nil, goerr.Wrap(err, "prediction failed")
	}

	result := Present(probability, in, cat)

	span.SetAttributes(
		attribute.Bool("elevated", result.Elevated),
		attribute.Int("risk_factors", len(result.RiskFactors)),
	)
	if s.instruments != nil {
		attrs := metric.WithAttributes(attribute.Bool("elevated", result.Elevated))
		s.instruments.Assessments.Add(ctx, 1, attrs)
		s.instruments.Probability.Record(ctx, probability, attrs)
	}

	return result, nil
}

// Present applies the threshold gate to a probability.
func Present(probability float64, in models.AssessmentInput, cat *messages.Catalog) *models.AssessmentResult {
	result := &models.AssessmentResult{
		Probability: probability,
		Percent:     int(probability * 100),
		Locale:      cat.Locale,
		RiskFactors: []models.RiskFactor{},
	}

	if probability > ElevatedThreshold {
		result.Elevated = true
		result.Headline = cat.Caution
		result.RiskFactors = EvaluateRiskFactors(in, cat)
	} else {
		result.Headline = cat.Reassurance
	}

	return result
}
