package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cardio-risk/backend/internal/assessment"
	"github.com/cardio-risk/backend/internal/classifier"
	"github.com/cardio-risk/backend/internal/logging"
	"github.com/cardio-risk/backend/internal/messages"
)

// Logger configures the process-wide slog logger.
type Logger struct {
	Level  string
	Format string
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level [debug|info|warn|error]",
			Value:       "info",
			Sources:     cli.EnvVars("CARDIO_LOG_LEVEL"),
			Destination: &x.Level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format [text|json]",
			Value:       "text",
			Sources:     cli.EnvVars("CARDIO_LOG_FORMAT"),
			Destination: &x.Format,
		},
	}
}

func (x *Logger) Configure() error {
	logger, err := logging.New(os.Stderr, x.Format, x.Level)
	if err != nil {
		return goerr.Wrap(err, "failed to configure logger")
	}
	logging.SetDefault(logger)
	return nil
}

// Model locates the classifier artifact and the default locale.
type Model struct {
	Location string
	Locale   string
}

const DefaultModelLocation = "models/model_cardio.json"

func (x *Model) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Model artifact location: a local path or s3://bucket/key",
			Value:       DefaultModelLocation,
			Sources:     cli.EnvVars("CARDIO_MODEL"),
			Destination: &x.Location,
		},
		&cli.StringFlag{
			Name:        "locale",
			Usage:       "Default locale for messages [en|ru]",
			Value:       messages.DefaultLocale,
			Sources:     cli.EnvVars("CARDIO_LOCALE"),
			Destination: &x.Locale,
		},
	}
}

// Load reads the classifier artifact and the message catalogs. Either
// failing is fatal for the caller.
func (x *Model) Load(ctx context.Context) (*classifier.Model, *messages.Catalogs, error) {
	src, err := classifier.NewSource(ctx, x.Location)
	if err != nil {
		return nil, nil, err
	}

	model, err := classifier.Load(ctx, src, assessment.FeatureNames)
	if err != nil {
		return nil, nil, err
	}

	catalogs, err := messages.Load(x.Locale)
	if err != nil {
		return nil, nil, err
	}

	logging.From(ctx).Info("model loaded",
		"name", model.Info.Name,
		"kind", model.Info.Kind,
		"source", model.Info.Source,
		"locales", catalogs.Locales(),
	)
	return model, catalogs, nil
}

// Server holds HTTP settings.
type Server struct {
	Port        string
	CORSOrigins []string
}

func (x *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "port",
			Usage:       "HTTP listen port",
			Value:       "8080",
			Sources:     cli.EnvVars("PORT"),
			Destination: &x.Port,
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Allowed CORS origin (repeatable, default any)",
			Sources:     cli.EnvVars("CARDIO_CORS_ORIGINS"),
			Destination: &x.CORSOrigins,
		},
	}
}

func (x *Server) Addr() string {
	return ":" + x.Port
}

// Telemetry holds the OTLP collector endpoint; empty disables export.
type Telemetry struct {
	Endpoint string
}

func (x *Telemetry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "otel-endpoint",
			Usage:       "OTLP gRPC endpoint for traces and metrics (disabled when empty)",
			Sources:     cli.EnvVars("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Destination: &x.Endpoint,
		},
	}
}
