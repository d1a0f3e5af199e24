package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/tasks"
	"github.com/desertthunder/reminisce/internal/ui"
	"github.com/urfave/cli/v3"
)

// CatalogPublish pushes the bundled catalog to the shared remote songs collection.
func (r *Runner) CatalogPublish(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	rate := cmd.Float("rate")
	if rate <= 0 {
		rate = r.config.Catalog.PublishRate
	}

	songs := models.DefaultSongs()
	progress := make(chan tasks.ProgressUpdate, len(songs))
	done := r.printProgress(progress)

	result, err := r.engine.PublishCatalog(ctx, progress, songs, rate)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("catalog publish failed: %w", err)
	}

	summary := fmt.Sprintf("Published %d/%d songs", result.Published, result.Total)
	if len(result.Failed) > 0 {
		return r.writePlainln("%s", ui.Warn(summary))
	}
	return r.writePlainln("%s", ui.Success("✓ "+summary))
}

// Export writes playlists and memories to files with the bulk export worker pool.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	done := r.printProgress(progress)

	result, err := r.engine.BulkExport(ctx, progress, tasks.BulkExportOpts{
		Format:      cmd.String("format"),
		OutputDir:   cmd.String("output"),
		NumWorkers:  cmd.Int("workers"),
		PlaylistIDs: cmd.StringSlice("playlist"),
		MemoryIDs:   cmd.StringSlice("memory"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("%s", ui.Title("Export complete"))
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Exported:   %d/%d\n", result.SuccessfulExports, result.Total)
	if result.FailedExports > 0 {
		r.writePlain("Failed:     %s\n", ui.Error(fmt.Sprint(result.FailedExports)))
	}
	return r.writePlain("Manifest:   %s\n", result.ManifestPath)
}

// printProgress renders updates until progress is closed; the returned channel closes after.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.writePlain("%s\n", ui.ProgressLine(u))
		}
	}()
	return done
}
