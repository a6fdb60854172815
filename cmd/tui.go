package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/desertthunder/crosspost/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive composer.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	mode, err := models.ParsePostMode(r.config.Composer.DefaultMode)
	if err != nil {
		r.logger.Warn("ignoring composer.default_mode", "error", err)
		mode = models.Unified
	}

	opts := ui.Options{Mode: mode, RestoreDrafts: true}
	if err := ui.Run(ctx, r.publisher(), opts); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
