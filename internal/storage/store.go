package storage

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminisce/internal/auth"
	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/shared"
)

// Options configures a [Store].
type Options struct {
	Cache cache.Cache
	// Remote is the document store; nil means remote is unavailable.
	Remote remote.DocumentStore
	// RemoteAvailable gates every remote call. It is false by default.
	RemoteAvailable bool
	Auth            auth.Authenticator
	Logger          *log.Logger
	// Now defaults to [time.Now].
	Now func() time.Time
	// Catalog seeds an empty song cache; defaults to [models.DefaultSongs].
	Catalog []models.Song
}

// Store is the cache-backed data access layer. Reads prefer the remote store and fall back to the
// local cache; writes land in the cache first and are mirrored to remote on a best-effort basis.
//
// A Store is safe for concurrent use.
type Store struct {
	cache           cache.Cache
	remote          remote.DocumentStore
	remoteAvailable atomic.Bool
	auth            auth.Authenticator
	logger          *log.Logger
	now             func() time.Time

	songs     *Collection[models.Song, *models.Song]
	playlists *Collection[models.Playlist, *models.Playlist]
	memories  *Collection[models.Memory, *models.Memory]
	logs      *activityLog
}

// NewStore wires a Store. A nil cache falls back to an in-memory cache.
func NewStore(opts Options) *Store {
	s := &Store{
		cache:  opts.Cache,
		remote: opts.Remote,
		auth:   opts.Auth,
		logger: shared.WithLogger(opts.Logger, "component", "storage"),
		now:    opts.Now,
	}
	s.remoteAvailable.Store(opts.RemoteAvailable)
	if s.cache == nil {
		s.cache = cache.NewMemoryCache()
	}
	if s.now == nil {
		s.now = time.Now
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = models.DefaultSongs()
	}

	s.songs = newCollection[models.Song](s, kind{
		name:       "song",
		key:        cache.KeySongs,
		collection: remote.Songs,
	})
	s.songs.seed = func() []models.Song {
		out := make([]models.Song, len(catalog))
		for i, song := range catalog {
			song.Mood = slices.Clone(song.Mood)
			out[i] = song
		}
		return out
	}
	s.playlists = newCollection[models.Playlist](s, kind{
		name:       "playlist",
		key:        cache.KeyPlaylists,
		collection: remote.Playlists,
		owned:      true,
	})
	s.memories = newCollection[models.Memory](s, kind{
		name:       "memory",
		key:        cache.KeyMemories,
		collection: remote.Memories,
		owned:      true,
	})
	s.logs = &activityLog{store: s}
	return s
}

func (s *Store) Songs() *Collection[models.Song, *models.Song]             { return s.songs }
func (s *Store) Playlists() *Collection[models.Playlist, *models.Playlist] { return s.playlists }
func (s *Store) Memories() *Collection[models.Memory, *models.Memory]      { return s.memories }

// Song looks up a catalog song through the read path.
func (s *Store) Song(ctx context.Context, id string) (*models.Song, error) {
	return s.songs.Get(ctx, id)
}

// Cache exposes the local cache for preference storage.
func (s *Store) Cache() cache.Cache { return s.cache }

// SetRemoteAvailable toggles remote access at runtime, e.g. when connectivity changes.
func (s *Store) SetRemoteAvailable(v bool) {
	s.remoteAvailable.Store(v)
}

// remoteUser returns the owner when remote calls may be attempted, nil otherwise.
// Authentication failures are logged and treated as unauthenticated.
func (s *Store) remoteUser(ctx context.Context) *auth.User {
	if !s.remoteAvailable.Load() || s.remote == nil || s.auth == nil {
		return nil
	}
	user, err := s.auth.EnsureAuthenticated(ctx)
	if err != nil {
		s.logger.Warn("authentication failed, using local cache", "err", err)
		return nil
	}
	if user == nil || user.UID == "" {
		return nil
	}
	return user
}

// ClearAllData deletes the owner's playlists, memories and activity logs remotely in one batch,
// then removes every collection key from the local cache. Remote failure is logged; local
// removal happens regardless.
func (s *Store) ClearAllData(ctx context.Context) (bool, error) {
	if user := s.remoteUser(ctx); user != nil {
		if err := s.remote.DeleteOwned(ctx, user.UID, remote.OwnedCollections...); err != nil {
			s.logger.Error("remote bulk delete failed", "uid", user.UID, "err", err)
		}
	}

	s.songs.mu.Lock()
	s.playlists.mu.Lock()
	s.memories.mu.Lock()
	s.logs.mu.Lock()
	defer s.songs.mu.Unlock()
	defer s.playlists.mu.Unlock()
	defer s.memories.mu.Unlock()
	defer s.logs.mu.Unlock()

	if err := s.cache.Remove(ctx, cache.KeyPlaylists, cache.KeyMemories, cache.KeyLogs, cache.KeySongs); err != nil {
		return false, fmt.Errorf("%w: %w", shared.ErrCacheWrite, err)
	}
	s.logger.Info("cleared local data")
	return true, nil
}
