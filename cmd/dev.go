package main

import (
	"context"

	"github.com/desertthunder/outside/internal/server"
	"github.com/desertthunder/outside/internal/shared"
	"github.com/urfave/cli/v3"
)

// DevServe runs the fixture API until interrupted. Log in as demo / outside123.
func (r *Runner) DevServe(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	api, err := server.NewFixtureAPI(logger)
	if err != nil {
		return err
	}
	router := server.NewFixtureRouter(api, logger, cmd.Duration("latency"))

	ready := make(chan string, 1)
	go func() {
		select {
		case bound := <-ready:
			r.writePlain("✓ Serving fixture API on http://%s (demo / outside123)\n", bound)
			r.writePlain("Point api.base_url (or %s_API_BASE_URL) at it and press Ctrl+C to stop\n", shared.EnvPrefix)
		case <-ctx.Done():
		}
	}()

	return server.Serve(ctx, addr, router, logger, ready)
}
