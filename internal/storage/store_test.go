package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/reminisce/internal/auth"
	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/shared"
	tu "github.com/desertthunder/reminisce/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "owner-1"

type fixture struct {
	store  *Store
	cache  *tu.FlakyCache
	remote *tu.MemoryRemote
	clock  *tu.Clock
}

// newFixture builds a store over an in-memory cache and remote. online controls RemoteAvailable.
func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	f := &fixture{
		cache:  tu.NewFlakyCache(cache.NewMemoryCache()),
		remote: tu.NewMemoryRemote(),
		clock:  tu.NewClock(time.UnixMilli(1700000000000)),
	}
	f.store = NewStore(Options{
		Cache:           f.cache,
		Remote:          f.remote,
		RemoteAvailable: online,
		Auth:            auth.Static{UID: owner},
		Now:             f.clock.Now,
	})
	return f
}

func (f *fixture) cached(t *testing.T, key string, v any) {
	t.Helper()
	ok, err := cache.GetJSON(context.Background(), f.cache, key, v)
	require.NoError(t, err)
	require.True(t, ok, "expected %s to be cached", key)
}

func putRemote(t *testing.T, r *tu.MemoryRemote, collection, ownerID string, v models.Entity) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	r.Put(collection, remote.Document{ID: v.EntityID(), OwnerID: ownerID, Timestamp: v.EntityTimestamp(), Data: data})
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and createdAt", func(t *testing.T) {
		f := newFixture(t, false)
		song := models.DefaultSongs()[2]

		saved, err := f.store.Playlists().Save(ctx, &models.Playlist{Name: "Evening", Songs: []models.PlaylistSong{song.Snapshot()}})
		require.NoError(t, err)
		assert.Equal(t, "1700000000000", saved.ID)
		assert.Equal(t, int64(1700000000000), saved.CreatedAt)

		list, err := f.store.Playlists().List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Evening", list[0].Name)
		assert.Equal(t, "Moon River", list[0].Songs[0].Title)
	})

	t.Run("does not modify the argument", func(t *testing.T) {
		f := newFixture(t, false)
		in := &models.Playlist{Name: "A"}
		_, err := f.store.Playlists().Save(ctx, in)
		require.NoError(t, err)
		assert.Empty(t, in.ID)
	})

	t.Run("upsert idempotence", func(t *testing.T) {
		f := newFixture(t, false)
		p := &models.Playlist{ID: "p1", Name: "First"}
		_, err := f.store.Playlists().Save(ctx, p)
		require.NoError(t, err)

		p.Name = "Second"
		_, err = f.store.Playlists().Save(ctx, p)
		require.NoError(t, err)
		_, err = f.store.Playlists().Save(ctx, p)
		require.NoError(t, err)

		var cached []models.Playlist
		f.cached(t, cache.KeyPlaylists, &cached)
		require.Len(t, cached, 1)
		assert.Equal(t, "Second", cached[0].Name)
	})

	t.Run("restamps createdAt on every save", func(t *testing.T) {
		f := newFixture(t, false)
		saved, err := f.store.Memories().Save(ctx, &models.Memory{ID: "m1", Title: "Wedding", CreatedAt: 5})
		require.NoError(t, err)
		assert.Equal(t, f.clock.Now().UnixMilli(), saved.CreatedAt)

		f.clock.Advance(time.Second)
		again, err := f.store.Memories().Save(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, f.clock.Now().UnixMilli(), again.CreatedAt)
	})

	t.Run("mirrors to remote with owner", func(t *testing.T) {
		f := newFixture(t, true)
		saved, err := f.store.Memories().Save(ctx, &models.Memory{Title: "Wedding"})
		require.NoError(t, err)

		doc, err := f.remote.Get(ctx, remote.Memories, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, owner, doc.OwnerID)
		assert.Equal(t, saved.CreatedAt, doc.Timestamp)

		var m models.Memory
		require.NoError(t, json.Unmarshal(doc.Data, &m))
		assert.Equal(t, owner, m.UserID)
		assert.Empty(t, saved.UserID, "the returned entity is the local copy")
	})

	t.Run("local durability under remote failure", func(t *testing.T) {
		f := newFixture(t, true)
		f.remote.FailOn(tu.OpSet, nil)

		saved, err := f.store.Playlists().Save(ctx, &models.Playlist{Name: "Offline"})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)

		var cached []models.Playlist
		f.cached(t, cache.KeyPlaylists, &cached)
		require.Len(t, cached, 1)
		assert.Equal(t, 0, f.remote.Len(remote.Playlists))
	})

	t.Run("local write failure is returned", func(t *testing.T) {
		f := newFixture(t, true)
		f.cache.FailWrites(true)

		_, err := f.store.Playlists().Save(ctx, &models.Playlist{Name: "x"})
		assert.ErrorIs(t, err, shared.ErrCacheWrite)
		assert.Equal(t, 0, f.remote.Len(remote.Playlists), "remote is not attempted without local durability")
	})

	t.Run("nil entity", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.store.Playlists().Save(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("corrupt cache is replaced", func(t *testing.T) {
		f := newFixture(t, false)
		require.NoError(t, f.cache.Set(ctx, cache.KeyPlaylists, []byte("not json")))

		_, err := f.store.Playlists().Save(ctx, &models.Playlist{Name: "fresh"})
		require.NoError(t, err)

		list, err := f.store.Playlists().List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("requires id", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.store.Playlists().Update(ctx, &models.Playlist{Name: "x"})
		assert.ErrorIs(t, err, shared.ErrMissingID)
	})

	t.Run("stamps modification time and replaces", func(t *testing.T) {
		f := newFixture(t, true)
		saved, err := f.store.Playlists().Save(ctx, &models.Playlist{Name: "Before"})
		require.NoError(t, err)

		f.clock.Advance(time.Minute)
		saved.Name = "After"
		updated, err := f.store.Playlists().Update(ctx, saved)
		require.NoError(t, err)
		require.NotNil(t, updated.DateModified)
		assert.True(t, updated.DateModified.Equal(f.clock.Now()))
		assert.Equal(t, saved.CreatedAt, updated.CreatedAt)

		got, err := f.store.Playlists().Get(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
	})

	t.Run("memory updatedAt under remote failure", func(t *testing.T) {
		f := newFixture(t, true)
		f.remote.FailAll()

		m, err := f.store.Memories().Update(ctx, &models.Memory{ID: "m1", Title: "Holiday"})
		require.NoError(t, err)
		require.NotNil(t, m.UpdatedAt)

		var cached []models.Memory
		f.cached(t, cache.KeyMemories, &cached)
		require.Len(t, cached, 1)
		assert.Equal(t, "Holiday", cached[0].Title)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("absent id succeeds", func(t *testing.T) {
		f := newFixture(t, true)
		ok, err := f.store.Playlists().Delete(ctx, "never-existed")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("removes locally and remotely", func(t *testing.T) {
		f := newFixture(t, true)
		a, err := f.store.Playlists().Save(ctx, &models.Playlist{ID: "a", Name: "A"})
		require.NoError(t, err)
		_, err = f.store.Playlists().Save(ctx, &models.Playlist{ID: "b", Name: "B"})
		require.NoError(t, err)

		ok, err := f.store.Playlists().Delete(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		var cached []models.Playlist
		f.cached(t, cache.KeyPlaylists, &cached)
		require.Len(t, cached, 1)
		assert.Equal(t, "b", cached[0].ID)
		assert.Equal(t, 1, f.remote.Len(remote.Playlists))
	})

	t.Run("local durability under remote failure", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.store.Memories().Save(ctx, &models.Memory{ID: "m1", Title: "x"})
		require.NoError(t, err)
		f.remote.FailOn(tu.OpDelete, nil)

		ok, err := f.store.Memories().Delete(ctx, "m1")
		require.NoError(t, err)
		assert.True(t, ok)

		f.remote.Heal()
		f.store.SetRemoteAvailable(false)
		list, err := f.store.Memories().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("empty id", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.store.Playlists().Delete(ctx, "")
		assert.ErrorIs(t, err, shared.ErrMissingID)
	})
}

func TestReadPath(t *testing.T) {
	ctx := context.Background()

	t.Run("cache replace on read", func(t *testing.T) {
		f := newFixture(t, true)
		f.store.SetRemoteAvailable(false)
		_, err := f.store.Playlists().Save(ctx, &models.Playlist{ID: "stale", Name: "Stale"})
		require.NoError(t, err)

		putRemote(t, f.remote, remote.Playlists, owner, &models.Playlist{ID: "r1", Name: "Remote 1"})
		putRemote(t, f.remote, remote.Playlists, owner, &models.Playlist{ID: "r2", Name: "Remote 2"})
		putRemote(t, f.remote, remote.Playlists, "someone-else", &models.Playlist{ID: "x", Name: "Not mine"})

		f.store.SetRemoteAvailable(true)
		online, err := f.store.Playlists().List(ctx)
		require.NoError(t, err)
		assert.Len(t, online, 2)

		f.store.SetRemoteAvailable(false)
		offline, err := f.store.Playlists().List(ctx)
		require.NoError(t, err)
		ids := []string{}
		for _, p := range offline {
			ids = append(ids, p.ID)
		}
		assert.ElementsMatch(t, []string{"r1", "r2"}, ids)
	})

	t.Run("falls back on remote error", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.store.Playlists().Save(ctx, &models.Playlist{ID: "local", Name: "Local"})
		require.NoError(t, err)

		f.remote.FailAll()
		list, err := f.store.Playlists().List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "local", list[0].ID)
	})

	t.Run("falls back when unauthenticated", func(t *testing.T) {
		f := newFixture(t, true)
		f.store.auth = auth.AuthenticatorFunc(func(context.Context) (*auth.User, error) {
			return nil, shared.ErrNotAuthenticated
		})
		putRemote(t, f.remote, remote.Playlists, owner, &models.Playlist{ID: "r1", Name: "Remote"})

		list, err := f.store.Playlists().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Empty(t, f.remote.Calls())
	})

	t.Run("undecodable remote document falls back", func(t *testing.T) {
		f := newFixture(t, true)
		f.remote.Put(remote.Memories, remote.Document{ID: "bad", OwnerID: owner, Data: []byte(`"nope"`)})

		list, err := f.store.Memories().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("corrupt cache reads as empty", func(t *testing.T) {
		f := newFixture(t, false)
		require.NoError(t, f.cache.Set(ctx, cache.KeyMemories, []byte("{")))

		list, err := f.store.Memories().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("unreadable cache reads as empty", func(t *testing.T) {
		f := newFixture(t, false)
		f.cache.FailReads(true)

		list, err := f.store.Playlists().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("get remote then local", func(t *testing.T) {
		f := newFixture(t, true)
		putRemote(t, f.remote, remote.Playlists, owner, &models.Playlist{ID: "r1", Name: "Remote"})
		putRemote(t, f.remote, remote.Playlists, "other", &models.Playlist{ID: "r2", Name: "Foreign"})

		got, err := f.store.Playlists().Get(ctx, "r1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Remote", got.Name)

		foreign, err := f.store.Playlists().Get(ctx, "r2")
		require.NoError(t, err)
		assert.Nil(t, foreign)

		f.remote.FailAll()
		missing, err := f.store.Playlists().Get(ctx, "r1")
		require.NoError(t, err)
		assert.Nil(t, missing, "nothing cached yet")
	})

	t.Run("canceled context", func(t *testing.T) {
		f := newFixture(t, false)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := f.store.Playlists().List(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSongs(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds an empty cache offline", func(t *testing.T) {
		f := newFixture(t, false)
		songs, err := f.store.Songs().List(ctx)
		require.NoError(t, err)
		assert.Len(t, songs, 15)

		var cached []models.Song
		f.cached(t, cache.KeySongs, &cached)
		assert.Len(t, cached, 15)
	})

	t.Run("reseeding hands out fresh mood slices", func(t *testing.T) {
		f := newFixture(t, false)
		songs, err := f.store.Songs().List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, songs[0].Mood)
		songs[0].Mood[0] = "changed"

		require.NoError(t, f.cache.Remove(ctx, cache.KeySongs))
		songs, err = f.store.Songs().List(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultSongs()[0].Mood, songs[0].Mood)
	})

	t.Run("empty remote catalog falls through to seed", func(t *testing.T) {
		f := newFixture(t, true)
		songs, err := f.store.Songs().List(ctx)
		require.NoError(t, err)
		assert.Len(t, songs, 15)
	})

	t.Run("remote catalog is unfiltered and replaces the seed", func(t *testing.T) {
		f := newFixture(t, true)
		putRemote(t, f.remote, remote.Songs, "", &models.Song{ID: "100", Title: "New", Mood: []string{"happy"}})

		songs, err := f.store.Songs().List(ctx)
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "New", songs[0].Title)

		f.store.SetRemoteAvailable(false)
		song, err := f.store.Song(ctx, "100")
		require.NoError(t, err)
		require.NotNil(t, song)
		assert.Equal(t, "New", song.Title)
	})

	t.Run("song lookup", func(t *testing.T) {
		f := newFixture(t, false)
		song, err := f.store.Song(ctx, "3")
		require.NoError(t, err)
		require.NotNil(t, song)
		assert.Equal(t, "Moon River", song.Title)

		none, err := f.store.Song(ctx, "999")
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("custom catalog", func(t *testing.T) {
		store := NewStore(Options{Catalog: []models.Song{{ID: "x", Title: "Only"}}})
		songs, err := store.Songs().List(ctx)
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "Only", songs[0].Title)
	})
}

func TestMoods(t *testing.T) {
	ctx := context.Background()

	t.Run("filter is exact and case-insensitive", func(t *testing.T) {
		f := newFixture(t, false)
		for _, query := range []string{"happy", "HAPPY", " Happy "} {
			songs, err := f.store.SongsByMood(ctx, query)
			require.NoError(t, err)

			ids := []string{}
			for _, s := range songs {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, []string{"1", "6", "7", "8"}, ids, "query %q", query)
		}
	})

	t.Run("mixed-case tags", func(t *testing.T) {
		store := NewStore(Options{Catalog: []models.Song{
			{ID: "a", Mood: []string{"Sad"}},
			{ID: "b", Mood: []string{"sad", "happy"}},
			{ID: "c", Mood: []string{"polka"}},
		}})

		sad, err := store.SongsByMood(ctx, "sad")
		require.NoError(t, err)
		assert.Len(t, sad, 2)

		moods, err := store.AvailableMoods(ctx)
		require.NoError(t, err)
		require.Len(t, moods, 2)
		assert.Equal(t, "happy", moods[0].ID)
		assert.Equal(t, "sad", moods[1].ID)
	})

	t.Run("default catalog offers every registered mood", func(t *testing.T) {
		f := newFixture(t, false)
		moods, err := f.store.AvailableMoods(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.MoodCategories(), moods)
	})

	t.Run("unknown mood", func(t *testing.T) {
		f := newFixture(t, false)
		songs, err := f.store.SongsByMood(ctx, "grumpy")
		require.NoError(t, err)
		assert.Empty(t, songs)
	})
}

func TestClearAllData(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *fixture) {
		t.Helper()
		_, err := f.store.Songs().List(ctx)
		require.NoError(t, err)
		_, err = f.store.Playlists().Save(ctx, &models.Playlist{Name: "p"})
		require.NoError(t, err)
		_, err = f.store.Memories().Save(ctx, &models.Memory{Title: "m"})
		require.NoError(t, err)
		require.NotNil(t, f.store.LogActivity(ctx, models.PlaylistCreated, &models.PlaylistDetails{Name: "p"}))
	}

	assertCleared := func(t *testing.T, f *fixture) {
		t.Helper()
		for _, key := range []string{cache.KeySongs, cache.KeyPlaylists, cache.KeyMemories, cache.KeyLogs} {
			_, ok, err := f.cache.Get(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok, "%s should be removed", key)
		}
	}

	t.Run("clears both tiers", func(t *testing.T) {
		f := newFixture(t, true)
		seed(t, f)
		putRemote(t, f.remote, remote.Playlists, "other", &models.Playlist{ID: "keep", Name: "theirs"})

		ok, err := f.store.ClearAllData(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assertCleared(t, f)

		assert.Equal(t, 1, f.remote.Len(remote.Playlists), "other owners are untouched")
		assert.Equal(t, 0, f.remote.Len(remote.Memories))
		assert.Equal(t, 0, f.remote.Len(remote.ActivityLogs))
	})

	t.Run("remote batch failure still clears locally", func(t *testing.T) {
		f := newFixture(t, true)
		seed(t, f)
		f.remote.FailOn(tu.OpDeleteOwned, nil)

		ok, err := f.store.ClearAllData(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assertCleared(t, f)
		assert.Equal(t, 1, f.remote.Len(remote.Playlists), "batch is all or nothing")
	})

	t.Run("songs reseed afterwards", func(t *testing.T) {
		f := newFixture(t, false)
		seed(t, f)
		_, err := f.store.ClearAllData(ctx)
		require.NoError(t, err)

		songs, err := f.store.Songs().List(ctx)
		require.NoError(t, err)
		assert.Len(t, songs, 15)
	})
}

func TestConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.store.Playlists().Save(ctx, &models.Playlist{ID: fmt.Sprintf("p%d", i), Name: "n"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := f.store.Playlists().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 20, "saves to different ids never clobber each other")
}

func TestSQLiteCacheIntegration(t *testing.T) {
	ctx := context.Background()
	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, shared.RunMigrations(db))

	store := NewStore(Options{Cache: cache.NewSQLiteCache(db)})
	saved, err := store.Memories().Save(ctx, &models.Memory{Title: "Summer 1965"})
	require.NoError(t, err)

	reopened := NewStore(Options{Cache: cache.NewSQLiteCache(db)})
	got, err := reopened.Memories().Get(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Summer 1965", got.Title)

	entry := reopened.LogActivity(ctx, models.MemoryCreated, got.Details())
	require.NotNil(t, entry)
	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-z]{8}$`), entry.ID)
}
