package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reminisce/internal/auth"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/ui"
	"github.com/urfave/cli/v3"
)

// AuthStatus reports the owner identity and whether the remote store answers.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	r.logger.Info("checking auth status")

	if r.remote == nil {
		r.writePlain("Remote: %s\n", ui.Warn("disabled (offline)"))
	} else if p, ok := r.remote.(remote.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			r.writePlain("Remote: %s\n", ui.Error("✗ unreachable"))
			r.logger.Debug("ping failed", "error", err)
		} else {
			r.writePlain("Remote: %s\n", ui.Success("✓ reachable"))
		}
	}

	user, err := r.auth.EnsureAuthenticated(ctx)
	switch {
	case err != nil:
		return r.writePlain("Authentication: %s (%v)\n", ui.Error("✗ failed"), err)
	case user == nil:
		return r.writePlain("Authentication: %s\n", ui.Warn("no owner configured; owned data stays local"))
	default:
		return r.writePlain("Authentication: %s as %s\n", ui.Success("✓ signed in"), user.UID)
	}
}

// AuthSignOut forgets stored anonymous credentials. The next remote call signs in again.
func (r *Runner) AuthSignOut(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	anon, ok := r.auth.(*auth.Anonymous)
	if !ok {
		return r.writePlain("%s\n", ui.Help("Static identity configured; nothing to sign out"))
	}
	if err := anon.SignOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return r.writePlain("%s\n", ui.Success("✓ Signed out"))
}
