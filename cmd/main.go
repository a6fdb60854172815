package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/services"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:    "crosspost",
		Usage:   "Compose once, post to every linked social platform",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, runner.configure(ctx, cmd.String("config"), cmd.IsSet("config"))
		},
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		runner.Close()
		os.Exit(report(logger, err))
	}
}

// configure loads the config file at path and rebuilds the backend client from it.
// A missing file falls back to the embedded defaults unless the path was given explicitly.
func (r *Runner) configure(ctx context.Context, path string, explicit bool) error {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		config = loaded
	} else if explicit {
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	client := services.NewHTTPClient(ctx, config.API)
	r.config = config
	r.configPath = path
	r.api = services.NewAPIService(config.API.BaseURL, client).WithRateLimit(config.API.RequestsPerSecond)
	r.backend = services.NewBackendService(r.api)
	return nil
}

// report logs err and returns the process exit code.
func report(logger *log.Logger, err error) int {
	var loadErr *composer.LoadError
	switch {
	case errors.Is(err, shared.ErrNotImplemented):
		logger.Warn("not implemented")
		return 0
	case errors.As(err, &loadErr):
		logger.Error("could not load platforms from the backend", "endpoint", loadErr.Endpoint, "error", loadErr.Err)
		return 1
	case isValidation(err):
		logger.Error("post not sent", "reason", err)
		return 2
	case errors.Is(err, shared.ErrPartialFailure):
		logger.Warn("post failed on some platforms", "error", err)
		return 1
	default:
		logger.Errorf("application error: %v", err)
		return 1
	}
}
