package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/desertthunder/reminisce/internal/ui"
	"github.com/urfave/cli/v3"
)

// SongsList prints the catalog.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	songs, err := r.store.Songs().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", ui.Title(fmt.Sprintf("Songs (%d)", len(songs))))
	for _, s := range songs {
		r.writePlain("%s\n", ui.SongLine(s))
	}
	return nil
}

// SongsShow prints one catalog song.
func (r *Runner) SongsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	song, err := r.store.Song(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load song: %w", err)
	}
	if song == nil {
		return fmt.Errorf("song %s: %w", id, shared.ErrNotFound)
	}
	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", ui.SongDetail(*song))
}

// SongsByMood prints the songs tagged with a mood.
func (r *Runner) SongsByMood(ctx context.Context, cmd *cli.Command) error {
	mood := cmd.StringArg("mood")
	if mood == "" {
		return fmt.Errorf("%w: mood", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	songs, err := r.store.SongsByMood(ctx, mood)
	if err != nil {
		return fmt.Errorf("failed to filter songs: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	if len(songs) == 0 {
		return r.writePlain("%s\n", ui.Warn(fmt.Sprintf("No songs found for mood %q", mood)))
	}
	for _, s := range songs {
		r.writePlain("%s\n", ui.SongLine(s))
	}
	return nil
}

// Moods prints the mood categories used by at least one song.
func (r *Runner) Moods(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	moods, err := r.store.AvailableMoods(ctx)
	if err != nil {
		return fmt.Errorf("failed to list moods: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(moods, cmd.Bool("pretty"))
	}

	songs, err := r.store.Songs().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}
	for _, m := range moods {
		r.writePlain("%s\n", ui.MoodLine(m, countMood(songs, m.ID)))
	}
	return nil
}

func countMood(songs []models.Song, mood string) int {
	n := 0
	for _, s := range songs {
		if s.HasMood(mood) {
			n++
		}
	}
	return n
}

// catalogSongs resolves song ids against the catalog, in the given order.
func (r *Runner) catalogSongs(ctx context.Context, ids []string) ([]models.PlaylistSong, error) {
	out := make([]models.PlaylistSong, 0, len(ids))
	for _, id := range ids {
		song, err := r.store.Song(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load song %s: %w", id, err)
		}
		if song == nil {
			return nil, fmt.Errorf("%w: unknown song %q", shared.ErrInvalidArgument, id)
		}
		out = append(out, song.Snapshot())
	}
	return out, nil
}
