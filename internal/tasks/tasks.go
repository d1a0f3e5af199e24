// package tasks implements bulk operations over the library: catalog publishing and exports.
//
// Operations emit progress updates via channels for non-blocking status reporting to the CLI.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/desertthunder/reminisce/internal/storage"
	"golang.org/x/time/rate"
)

// DefaultRateLimit is the requests per second used when options leave it unset.
const DefaultRateLimit = 5.0

// Library is the read side of the store used by exports.
type Library interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	Playlist(ctx context.Context, id string) (*models.Playlist, error)
	ListMemories(ctx context.Context) ([]models.Memory, error)
	Memory(ctx context.Context, id string) (*models.Memory, error)
}

type storeLibrary struct{ s *storage.Store }

// StoreLibrary adapts a [storage.Store] to [Library].
func StoreLibrary(s *storage.Store) Library { return storeLibrary{s} }

func (l storeLibrary) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return l.s.Playlists().List(ctx)
}

func (l storeLibrary) Playlist(ctx context.Context, id string) (*models.Playlist, error) {
	return l.s.Playlists().Get(ctx, id)
}

func (l storeLibrary) ListMemories(ctx context.Context) ([]models.Memory, error) {
	return l.s.Memories().List(ctx)
}

func (l storeLibrary) Memory(ctx context.Context, id string) (*models.Memory, error) {
	return l.s.Memories().Get(ctx, id)
}

// Engine runs bulk operations. Either dependency may be nil when the caller only needs the other.
type Engine struct {
	library Library
	remote  remote.DocumentStore
	logger  *log.Logger
}

func NewEngine(library Library, rs remote.DocumentStore, logger *log.Logger) *Engine {
	return &Engine{
		library: library,
		remote:  rs,
		logger:  shared.WithLogger(logger, "component", "tasks"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// PublishResult reports a catalog publish run.
type PublishResult struct {
	Total     int
	Published int
	Failed    map[string]error // song id to error
}

// PublishCatalog upserts songs into the shared remote songs collection, one request per song at
// most rate per second. Per-song failures are collected; only context cancellation aborts the run.
func (e *Engine) PublishCatalog(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	songs []models.Song,
	rps float64,
) (*PublishResult, error) {
	if e.remote == nil {
		return nil, shared.ErrRemoteUnavailable
	}
	if rps <= 0 {
		rps = DefaultRateLimit
	}

	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	result := &PublishResult{Total: len(songs), Failed: map[string]error{}}

	for i, song := range songs {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		err := e.publishSong(ctx, song)
		if err != nil {
			result.Failed[song.ID] = err
			e.logger.Warn("publish failed", "song", song.ID, "error", err)
		} else {
			result.Published++
		}
		e.sendProgress(progress, publishSongUpdate(i+1, len(songs), song.Title, err))
	}
	return result, nil
}

func (e *Engine) publishSong(ctx context.Context, song models.Song) error {
	if song.ID == "" {
		return shared.ErrMissingID
	}
	data, err := json.Marshal(song)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return e.remote.Set(ctx, remote.Songs, remote.Document{ID: song.ID, Data: data})
}
