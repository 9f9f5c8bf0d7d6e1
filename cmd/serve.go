package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mvx/internal/server"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const pruneInterval = 10 * time.Minute

// Serve runs the JSON HTTP server and the idle session janitor until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return fmt.Errorf("%w: the server needs a database", shared.ErrServiceUnavailable)
	}

	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}
	ttl := cfg.SessionTTL.Duration
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	app := server.NewApp(server.AppOpts{
		Local:     r.local,
		Sessions:  shared.NewSessionRegistry(r.db),
		Validator: r.validator,
		Engine:    r.engine,
		Logger:    shared.WithLogger(r.logger, "component", "server"),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(ctx, cfg.Addr(), app.Routes(), r.logger)
	})
	g.Go(func() error {
		app.PruneSessions(ctx, pruneInterval, ttl)
		return nil
	})
	return g.Wait()
}
