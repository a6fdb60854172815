package main

import (
	"context"

	"github.com/desertthunder/crosspost/internal/server"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the sandbox backend until the context is canceled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	logger := shared.WithLogger(r.logger, "component", "sandbox")
	router := server.NewSandboxRouter(r.config.Sandbox, r.config.API.Token, r.config.Server.RequestsPerSecond, logger)
	for _, route := range router.Routes() {
		logger.Debug("route", "path", route)
	}

	return server.Run(ctx, addr, router, logger)
}
