package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cardio-risk/backend/internal/assessment"
	"github.com/cardio-risk/backend/internal/config"
	"github.com/cardio-risk/backend/internal/logging"
	"github.com/cardio-risk/backend/internal/server"
	"github.com/cardio-risk/backend/internal/telemetry"
)

func cmdServe() *cli.Command {
	var modelCfg config.Model
	var serverCfg config.Server
	var telemetryCfg config.Telemetry

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, modelCfg.Flags()...)
	flags = append(flags, telemetryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server with the assessment form and JSON API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown, err := telemetry.Init(ctx, "cardio", telemetryCfg.Endpoint)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize telemetry")
			}
			defer telemetry.Flush(context.Background(), shutdown)

			model, catalogs, err := modelCfg.Load(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load model", goerr.V("location", modelCfg.Location))
			}

			instruments, err := telemetry.NewInstruments()
			if err != nil {
				return goerr.Wrap(err, "failed to create instruments")
			}

			svc := assessment.NewService(model, catalogs, instruments)
			h := assessment.NewHandler(svc, model.Info)
			router := server.NewRouter(h, serverCfg.CORSOrigins)

			logging.Default().Info("Serving assessments",
				"addr", serverCfg.Addr(),
				"model", model.Info.Name,
				"telemetry", telemetryCfg.Endpoint != "",
			)
			return server.Run(ctx, serverCfg.Addr(), router)
		},
	}
}
