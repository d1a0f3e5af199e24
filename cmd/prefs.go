package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/desertthunder/reminisce/internal/storage"
	"github.com/desertthunder/reminisce/internal/ui"
	"github.com/urfave/cli/v3"
)

type prefsView struct {
	Theme          storage.Theme `json:"theme"`
	CaregiverMode  bool          `json:"caregiverMode"`
	HasSeenWelcome bool          `json:"hasSeenWelcome"`
}

// PrefsShow prints the device preferences.
func (r *Runner) PrefsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	view := prefsView{
		Theme:          r.prefs.Theme(ctx),
		CaregiverMode:  r.prefs.CaregiverMode(ctx),
		HasSeenWelcome: r.prefs.HasSeenWelcome(ctx),
	}
	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlain("theme:          %s\n", view.Theme)
	r.writePlain("caregiver-mode: %t\n", view.CaregiverMode)
	return r.writePlain("welcome-seen:   %t\n", view.HasSeenWelcome)
}

// PrefsSet updates one preference.
func (r *Runner) PrefsSet(ctx context.Context, cmd *cli.Command) error {
	key, value := cmd.StringArg("key"), cmd.StringArg("value")
	if key == "" || value == "" {
		return fmt.Errorf("%w: usage 'prefs set <key> <value>'", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	var err error
	switch key {
	case "theme":
		err = r.prefs.SetTheme(ctx, storage.Theme(value))
	case "caregiver-mode", "welcome-seen":
		v, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("%w: %s expects true or false", shared.ErrInvalidArgument, key)
		}
		if key == "caregiver-mode" {
			err = r.prefs.SetCaregiverMode(ctx, v)
		} else {
			err = r.prefs.SetHasSeenWelcome(ctx, v)
		}
	default:
		return fmt.Errorf("%w: unknown preference %q", shared.ErrInvalidArgument, key)
	}
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ %s = %s", key, value)))
}

// Clear wipes playlists, memories and activity for the current owner. Preferences survive.
func (r *Runner) Clear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete all playlists, memories and activity", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if _, err := r.store.ClearAllData(ctx); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return r.writePlain("%s\n", ui.Success("✓ All playlists, memories and activity cleared"))
}
