package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/reminisce/internal/formatter"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/desertthunder/reminisce/internal/ui"
	"github.com/urfave/cli/v3"
)

// LogsList prints recent activity, newest first, optionally filtered by category.
func (r *Runner) LogsList(ctx context.Context, cmd *cli.Command) error {
	filter, err := models.ParseLogFilter(cmd.String("filter"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	format := strings.ToLower(cmd.String("format"))
	if format != "text" && format != "csv" && format != "json" {
		return fmt.Errorf("%w: format must be text, csv or json", shared.ErrInvalidFlag)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	entries, err := r.store.ActivityLogs(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to load activity: %w", err)
	}
	entries = models.FilterLogs(entries, filter)

	var data []byte
	switch format {
	case "csv":
		if data, err = formatter.LogsToCSV(entries); err != nil {
			return err
		}
	case "json":
		if data, err = formatter.MarshalJSON(entries, true); err != nil {
			return err
		}
		data = append(data, '\n')
	default:
		if path := cmd.String("output"); path != "" {
			data = formatter.LogsToText(entries)
			break
		}
		if len(entries) == 0 {
			return r.writePlain("%s\n", ui.Help("No activity recorded yet"))
		}
		for _, e := range entries {
			r.writePlain("%s\n", ui.LogLine(e))
		}
		return nil
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Wrote %d entries to %s", len(entries), path)))
	}
	_, err = r.output.Write(data)
	return err
}

// LogsReact records a patient reaction for a catalog song.
func (r *Runner) LogsReact(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	songs, err := r.catalogSongs(ctx, []string{cmd.String("song")})
	if err != nil {
		return err
	}

	if err := r.session.RecordReaction(ctx, songs[0], cmd.String("reaction")); err != nil {
		return err
	}
	reaction, _ := models.LookupReaction(cmd.String("reaction"))
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Recorded %s for %q", reaction.Label, songs[0].Title)))
}

// LogsNote records a caregiver note for a catalog song.
func (r *Runner) LogsNote(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	songs, err := r.catalogSongs(ctx, []string{cmd.String("song")})
	if err != nil {
		return err
	}

	if err := r.session.AddCaregiverNote(ctx, songs[0], cmd.String("note")); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Added note for %q", songs[0].Title)))
}
