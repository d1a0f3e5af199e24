package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/desertthunder/reminisce/internal/ui"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every playlist of the current owner.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	playlists, err := r.store.Playlists().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("%s\n", ui.Help("No playlists yet. Create one with 'reminisce playlists create --name ...'"))
	}
	for _, p := range playlists {
		r.writePlain("%s\n", ui.PlaylistLine(p))
	}
	return nil
}

// PlaylistsShow prints a playlist with its songs.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(p, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", ui.PlaylistDetail(*p))
}

// PlaylistsCreate saves a new playlist and logs it.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	songs, err := r.catalogSongs(ctx, cmd.StringSlice("song"))
	if err != nil {
		return err
	}

	p := &models.Playlist{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Mood:        shared.NormalizeMood(cmd.String("mood")),
		Songs:       songs,
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	saved, err := r.store.Playlists().Save(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to save playlist: %w", err)
	}
	r.store.LogActivity(ctx, models.PlaylistCreated, saved.Details())

	r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Created playlist %q", saved.Name)))
	return r.writePlain("ID: %s\n", saved.ID)
}

// PlaylistsUpdate edits a playlist in place and logs it.
func (r *Runner) PlaylistsUpdate(ctx context.Context, cmd *cli.Command) error {
	p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.IsSet("name") {
		p.Name = cmd.String("name")
	}
	if cmd.IsSet("description") {
		p.Description = cmd.String("description")
	}
	if cmd.IsSet("mood") {
		p.Mood = shared.NormalizeMood(cmd.String("mood"))
	}
	if remove := cmd.StringSlice("remove"); len(remove) > 0 {
		p.Songs = slices.DeleteFunc(p.Songs, func(s models.PlaylistSong) bool {
			return slices.Contains(remove, s.ID)
		})
	}
	added, err := r.catalogSongs(ctx, cmd.StringSlice("add"))
	if err != nil {
		return err
	}
	p.Songs = append(p.Songs, added...)

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	updated, err := r.store.Playlists().Update(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	r.store.LogActivity(ctx, models.PlaylistUpdated, updated.Details())

	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Updated playlist %q (%d songs)", updated.Name, len(updated.Songs))))
}

// PlaylistsDelete removes a playlist and logs it.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	if _, err := r.store.Playlists().Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	r.store.LogActivity(ctx, models.PlaylistDeleted, p.Details())

	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Deleted playlist %q", p.Name)))
}

// PlaylistsPlay starts the first song of a playlist and logs the play.
func (r *Runner) PlaylistsPlay(ctx context.Context, cmd *cli.Command) error {
	p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	if err := r.session.PlayPlaylist(ctx, p); err != nil {
		return fmt.Errorf("failed to play playlist: %w", err)
	}
	current := r.session.Current()
	r.writePlain("%s\n", ui.Success(fmt.Sprintf("▶ %s", p.Name)))
	return r.writePlain("Now playing: %s - %s\n", current.Artist, current.Title)
}

func (r *Runner) playlistArg(ctx context.Context, cmd *cli.Command) (*models.Playlist, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return nil, err
	}

	p, err := r.store.Playlists().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("playlist %s: %w", id, shared.ErrNotFound)
	}
	return p, nil
}
