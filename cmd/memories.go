package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/desertthunder/reminisce/internal/ui"
	"github.com/urfave/cli/v3"
)

// MemoriesList prints every memory of the current owner.
func (r *Runner) MemoriesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	memories, err := r.store.Memories().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list memories: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(memories, cmd.Bool("pretty"))
	}

	if len(memories) == 0 {
		return r.writePlain("%s\n", ui.Help("No memories yet. Create one with 'reminisce memories create --title ...'"))
	}
	for _, m := range memories {
		r.writePlain("%s\n", ui.MemoryLine(m))
	}
	return nil
}

// MemoriesShow prints a memory with its songs and tags.
func (r *Runner) MemoriesShow(ctx context.Context, cmd *cli.Command) error {
	m, err := r.memoryArg(ctx, cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(m, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", ui.MemoryDetail(*m))
}

// MemoriesCreate saves a new memory and logs it.
//
// Tags are given as songID:tagID; a tagged song that was not listed with --song is added.
func (r *Runner) MemoriesCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	tagsBySong, order, err := parseSongTags(cmd.StringSlice("tag"))
	if err != nil {
		return err
	}
	ids := cmd.StringSlice("song")
	for _, id := range order {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	snapshots, err := r.catalogSongs(ctx, ids)
	if err != nil {
		return err
	}
	songs := make([]models.MemorySong, 0, len(snapshots))
	for _, s := range snapshots {
		songs = append(songs, models.MemorySong{PlaylistSong: s, MemoryTags: tagsBySong[s.ID]})
	}

	m := &models.Memory{
		Title:       cmd.String("title"),
		Date:        cmd.String("date"),
		Description: cmd.String("description"),
		Songs:       songs,
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	m.Summarize()

	saved, err := r.store.Memories().Save(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}
	r.store.LogActivity(ctx, models.MemoryCreated, saved.Details())

	r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Created memory %q", saved.Title)))
	return r.writePlain("ID: %s\n", saved.ID)
}

// MemoriesTag replaces the tags of one song within a memory and logs a tag update.
func (r *Runner) MemoriesTag(ctx context.Context, cmd *cli.Command) error {
	m, err := r.memoryArg(ctx, cmd)
	if err != nil {
		return err
	}

	songID := cmd.String("song")
	idx := -1
	for i, s := range m.Songs {
		if s.ID == songID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: song %q is not part of memory %q", shared.ErrInvalidArgument, songID, m.Title)
	}

	tags, err := lookupTags(cmd.StringSlice("tag"))
	if err != nil {
		return err
	}
	m.Songs[idx].MemoryTags = tags
	m.Summarize()

	updated, err := r.store.Memories().Update(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to update memory: %w", err)
	}

	labels := make([]string, 0, len(tags))
	for _, t := range tags {
		labels = append(labels, t.Label)
	}
	song := updated.Songs[idx]
	r.store.LogActivity(ctx, models.TagUpdated, &models.TagUpdatedDetails{
		MemoryID:  updated.ID,
		SongID:    song.ID,
		SongTitle: song.Title,
		Tags:      labels,
	})

	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Tagged %q: %s", song.Title, strings.Join(labels, ", "))))
}

// MemoriesDelete removes a memory and logs it.
func (r *Runner) MemoriesDelete(ctx context.Context, cmd *cli.Command) error {
	m, err := r.memoryArg(ctx, cmd)
	if err != nil {
		return err
	}

	if _, err := r.store.Memories().Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	r.store.LogActivity(ctx, models.MemoryDeleted, m.Details())

	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Deleted memory %q", m.Title)))
}

// MemoriesPlay starts the first song of a memory and logs the recall.
func (r *Runner) MemoriesPlay(ctx context.Context, cmd *cli.Command) error {
	m, err := r.memoryArg(ctx, cmd)
	if err != nil {
		return err
	}

	if err := r.session.PlayMemory(ctx, m); err != nil {
		return fmt.Errorf("failed to play memory: %w", err)
	}
	current := r.session.Current()
	r.writePlain("%s\n", ui.Success(fmt.Sprintf("▶ %s", m.Title)))
	return r.writePlain("Now playing: %s - %s\n", current.Artist, current.Title)
}

func (r *Runner) memoryArg(ctx context.Context, cmd *cli.Command) (*models.Memory, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return nil, fmt.Errorf("%w: memory id", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return nil, err
	}

	m, err := r.store.Memories().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("memory %s: %w", id, shared.ErrNotFound)
	}
	return m, nil
}

// parseSongTags groups songID:tagID pairs by song, keeping first-seen song order.
func parseSongTags(pairs []string) (map[string][]models.MemoryTag, []string, error) {
	bySong := map[string][]models.MemoryTag{}
	var order []string
	for _, pair := range pairs {
		songID, tagID, ok := strings.Cut(pair, ":")
		if !ok || songID == "" || tagID == "" {
			return nil, nil, fmt.Errorf("%w: tag %q must be songID:tagID", shared.ErrInvalidFlag, pair)
		}
		tag, found := models.LookupMemoryTag(tagID)
		if !found {
			return nil, nil, fmt.Errorf("%w: unknown memory tag %q", shared.ErrInvalidArgument, tagID)
		}
		if _, seen := bySong[songID]; !seen {
			order = append(order, songID)
		}
		bySong[songID] = append(bySong[songID], tag)
	}
	return bySong, order, nil
}

func lookupTags(ids []string) ([]models.MemoryTag, error) {
	tags := make([]models.MemoryTag, 0, len(ids))
	for _, id := range ids {
		tag, ok := models.LookupMemoryTag(id)
		if !ok {
			return nil, fmt.Errorf("%w: unknown memory tag %q", shared.ErrInvalidArgument, id)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
