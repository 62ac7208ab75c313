package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"loan-qualifier/config"
	"loan-qualifier/logging"
	"loan-qualifier/model"
	"loan-qualifier/service"
)

var version = "v0.0.1-default"

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML config file (optional)",
		Sources: cli.EnvVars("LOAN_QUALIFIER_CONFIG"),
	}

	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level [debug, info, warn, error], overrides the config file",
	}

	artifactsFlag = &cli.StringFlag{
		Name:  "artifacts",
		Usage: "Directory holding the stage model artifacts, overrides the config file",
	}
)

// app is filled in by Before and shared by the subcommands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	a := &app{}

	return &cli.Command{
		Name:    "loan-qualifier",
		Usage:   "Two-stage loan pre-qualification service",
		Version: version,
		Flags: []cli.Flag{
			configFlag,
			logLevelFlag,
			artifactsFlag,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.Load(cmd.String(configFlag.Name))
			if err != nil {
				return ctx, err
			}
			if v := cmd.String(logLevelFlag.Name); v != "" {
				cfg.Log.Level = v
			}
			if v := cmd.String(artifactsFlag.Name); v != "" {
				cfg.Artifacts.Dir = v
			}

			logOut := cmd.Root().ErrWriter
			if logOut == nil {
				logOut = os.Stderr
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
			slog.SetDefault(a.logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.serveCmd(),
			a.scoreCmd(),
		},
	}
}

func (a *app) loadBundle() (*model.Bundle, error) {
	bundle, err := model.LoadBundle(a.cfg.Artifacts.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading model bundle: %w", err)
	}
	a.logger.Info("model bundle loaded",
		"dir", a.cfg.Artifacts.Dir,
		"fingerprint", bundle.Fingerprint(),
		"stage1_threshold", bundle.Stage1.Config.Threshold,
		"stage2_threshold", bundle.Stage2.Config.Threshold,
	)
	return bundle, nil
}

func stages(b *model.Bundle) (service.Stage, service.Stage) {
	return service.Stage{Scorer: b.Stage1.Model, Config: b.Stage1.Config},
		service.Stage{Scorer: b.Stage2.Model, Config: b.Stage2.Config}
}
