package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// Health checks the discovery backend.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	if r.discovery == nil {
		return fmt.Errorf("%w: discovery service not initialized", shared.ErrServiceUnavailable)
	}

	health, err := r.discovery.Health(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(health, cmd.Bool("pretty"))
	}
	r.writePlain("✓ Service is healthy\n")
	r.writePlain("Status: %s\n", health.Status)
	if health.Version != "" {
		r.writePlain("Version: %s\n", health.Version)
	}
	return nil
}
