package cli

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/cardio-risk/backend/internal/config"
	"github.com/cardio-risk/backend/internal/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	app := newApp(version, nil)

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}
	return nil
}

func newApp(version string, w io.Writer) *cli.Command {
	var loggerCfg config.Logger

	return &cli.Command{
		Name:    "cardio",
		Usage:   "Cardiovascular disease risk assessment",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Writer:  w,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := loggerCfg.Configure(); err != nil {
				return ctx, err
			}
			logging.Default().Debug("Starting cardio", "version", version, "logger", loggerCfg)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdAssess(),
		},
	}
}
