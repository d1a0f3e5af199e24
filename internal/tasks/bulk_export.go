package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/reminisce/internal/formatter"
	"github.com/desertthunder/reminisce/internal/shared"
	"golang.org/x/time/rate"
)

// Export formats accepted by [Engine.BulkExport].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

const (
	defaultWorkers = 5
	maxWorkers     = 10
	manifestName   = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk exports.
//
// When both id lists are empty every playlist and memory in the library is exported.
type BulkExportOpts struct {
	Format      string   // Export format: json, csv, markdown, txt
	OutputDir   string   // Base output directory (default: reminisce_export_{epoch})
	NumWorkers  int      // Concurrent workers (default: 5, max: 10)
	RateLimit   float64  // Fetches per second (default: 5)
	PlaylistIDs []string // Playlists to export
	MemoryIDs   []string // Memories to export
}

// ExportResult is the outcome of exporting one playlist or memory.
type ExportResult struct {
	Kind    string
	ID      string
	Name    string
	Success bool
	Files   []string
	Error   error
}

// BulkExportResult summarizes a [Engine.BulkExport] run.
type BulkExportResult struct {
	Total             int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []ExportResult
}

type exportRef struct {
	kind string
	id   string
}

type exportJob struct {
	kind   string
	id     string
	name   string
	export *formatter.Export
	entity any
}

// BulkExport exports playlists and memories concurrently with rate-limited fetches.
//
// A fetch failure or a missing entity is recorded as a failed result; the run continues.
// The manifest is written even when every item failed.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library not configured", shared.ErrInvalidInput)
	}

	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if !slices.Contains(Formats, opts.Format) {
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("reminisce_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	refs, err := e.exportRefs(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Total:           len(refs),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ExportResult, 0, len(refs)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(refs))
	results := make(chan ExportResult, len(refs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, fetchingEntitiesUpdate(len(refs)))
		for i, ref := range refs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			job, err := e.fetchJob(ctx, ref)
			if err != nil {
				results <- ExportResult{
					Kind:  ref.kind,
					ID:    ref.id,
					Name:  fmt.Sprintf("Unknown (%s)", ref.id),
					Error: err,
				}
				continue
			}

			jobs <- job
			e.sendProgress(prog, exportingUpdate(i+1, len(refs), job))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(refs), res))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(refs), res))
		}
	}

	// Cancellation may leave jobs unfetched; report it after the pool has drained.
	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := formatter.WriteManifest(manifest(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

func (e *Engine) exportRefs(ctx context.Context, opts BulkExportOpts) ([]exportRef, error) {
	refs := make([]exportRef, 0, len(opts.PlaylistIDs)+len(opts.MemoryIDs))
	if len(opts.PlaylistIDs) > 0 || len(opts.MemoryIDs) > 0 {
		for _, id := range opts.PlaylistIDs {
			refs = append(refs, exportRef{kind: "playlist", id: id})
		}
		for _, id := range opts.MemoryIDs {
			refs = append(refs, exportRef{kind: "memory", id: id})
		}
		return refs, nil
	}

	playlists, err := e.library.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	for _, p := range playlists {
		refs = append(refs, exportRef{kind: "playlist", id: p.ID})
	}

	memories, err := e.library.ListMemories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	for _, m := range memories {
		refs = append(refs, exportRef{kind: "memory", id: m.ID})
	}
	return refs, nil
}

func (e *Engine) fetchJob(ctx context.Context, ref exportRef) (exportJob, error) {
	switch ref.kind {
	case "memory":
		m, err := e.library.Memory(ctx, ref.id)
		if err != nil {
			return exportJob{}, fmt.Errorf("failed to fetch memory: %w", err)
		}
		if m == nil {
			return exportJob{}, fmt.Errorf("memory %s: %w", ref.id, shared.ErrNotFound)
		}
		return exportJob{kind: ref.kind, id: m.ID, name: m.Title, export: formatter.FromMemory(*m), entity: m}, nil
	default:
		p, err := e.library.Playlist(ctx, ref.id)
		if err != nil {
			return exportJob{}, fmt.Errorf("failed to fetch playlist: %w", err)
		}
		if p == nil {
			return exportJob{}, fmt.Errorf("playlist %s: %w", ref.id, shared.ErrNotFound)
		}
		return exportJob{kind: ref.kind, id: p.ID, name: p.Name, export: formatter.FromPlaylist(*p), entity: p}, nil
	}
}

// exportWorker is a worker goroutine that writes exports from the jobs channel.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- ExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- e.exportOne(job, opts)
	}
}

// exportOne writes a single entity in the requested format.
func (e *Engine) exportOne(j exportJob, opts BulkExportOpts) ExportResult {
	result := ExportResult{Kind: j.kind, ID: j.id, Name: j.name, Files: []string{}}
	base := filepath.Join(opts.OutputDir, j.kind+"_"+j.id)

	switch opts.Format {
	case FormatCSV:
		csvRes, err := formatter.WriteCSVExport(j.export, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.TracksFile, csvRes.MetadataFile}
	case FormatMarkdown:
		mdRes, err := formatter.WriteMarkdownExport(j.export, base)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
	case FormatText:
		path, err := formatter.WriteTextExport(j.export, base+"_songs.txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(j.export, j.entity, base+".json")
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	e.logger.Debug("exported", "kind", j.kind, "id", j.id, "files", len(result.Files))
	return result
}

func manifest(r *BulkExportResult, format string) formatter.Manifest {
	m := formatter.Manifest{
		Format:            format,
		OutputDirectory:   r.OutputDirectory,
		Total:             r.Total,
		SuccessfulExports: r.SuccessfulExports,
		FailedExports:     r.FailedExports,
		Items:             make([]formatter.ManifestItem, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		item := formatter.ManifestItem{Kind: res.Kind, ID: res.ID, Name: res.Name, Status: "success", Files: res.Files}
		if !res.Success {
			item.Status = "failed"
			if res.Error != nil {
				item.Error = res.Error.Error()
			}
		}
		m.Items = append(m.Items, item)
	}
	return m
}
