package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mvx/internal/services"
	"github.com/urfave/cli/v3"
)

// Open opens a movie's TMDB page in the default browser.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	id, err := movieID(cmd)
	if err != nil {
		return err
	}

	url := services.MovieWebURL(id)
	r.logger.Info("opening movie page", "url", url)
	if err := r.opener(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return r.writePlain("Opened %s\n", url)
}
