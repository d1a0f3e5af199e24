// Package playback tracks what is currently playing and records listening activity.
//
// A [Session] owns at most one [Handle]. Starting a new track always stops the previous one
// first. Activity is written through an [ActivityRecorder] in the background so a slow or
// unreachable store never delays playback.
package playback

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/shared"
)

// Handle is an open audio resource.
type Handle interface {
	Stop(ctx context.Context) error
}

// Opener turns a song into a playing [Handle].
type Opener interface {
	Open(ctx context.Context, song models.PlaylistSong) (Handle, error)
}

// ActivityRecorder is satisfied by storage.Store.
type ActivityRecorder interface {
	LogActivity(ctx context.Context, t models.ActivityType, details models.ActivityDetails) *models.ActivityLogEntry
}

// NullOpener opens handles that do nothing. Used where no audio device exists.
type NullOpener struct{}

func (NullOpener) Open(context.Context, models.PlaylistSong) (Handle, error) {
	return nullHandle{}, nil
}

type nullHandle struct{}

func (nullHandle) Stop(context.Context) error { return nil }

// Session is the single active playback slot.
type Session struct {
	opener   Opener
	recorder ActivityRecorder
	logger   *log.Logger

	mu      sync.Mutex
	handle  Handle
	current *models.PlaylistSong

	pending sync.WaitGroup
	queueMu sync.Mutex
	tail    chan struct{}
}

type activity struct {
	t       models.ActivityType
	details models.ActivityDetails
}

// NewSession builds a session. A nil opener uses [NullOpener]; a nil recorder disables activity logging.
func NewSession(opener Opener, recorder ActivityRecorder, logger *log.Logger) *Session {
	if opener == nil {
		opener = NullOpener{}
	}
	return &Session{
		opener:   opener,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "component", "playback"),
	}
}

// Current returns the song being played, or nil.
func (s *Session) Current() *models.PlaylistSong {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	song := *s.current
	return &song
}

// Play stops whatever is playing, opens song and records a song_played activity.
func (s *Session) Play(ctx context.Context, song models.PlaylistSong) error {
	return s.play(ctx, song)
}

// PlayPlaylist starts the playlist's first song, then records playlist_played and song_played.
func (s *Session) PlayPlaylist(ctx context.Context, p *models.Playlist) error {
	if p == nil || len(p.Songs) == 0 {
		return fmt.Errorf("%w: playlist has no songs", shared.ErrNoTrack)
	}
	return s.play(ctx, p.Songs[0], activity{models.PlaylistPlayed, p.Details()})
}

// PlayMemory starts the memory's first song, then records memory_played and song_played.
func (s *Session) PlayMemory(ctx context.Context, m *models.Memory) error {
	if m == nil || len(m.Songs) == 0 {
		return fmt.Errorf("%w: memory has no songs", shared.ErrNoTrack)
	}
	return s.play(ctx, m.Songs[0].PlaylistSong, activity{models.MemoryPlayed, m.Details()})
}

// RecordReaction logs the patient's reaction to song. reactionID must be a registered reaction.
func (s *Session) RecordReaction(ctx context.Context, song models.PlaylistSong, reactionID string) error {
	reaction, ok := models.LookupReaction(reactionID)
	if !ok {
		return fmt.Errorf("%w: unknown reaction %q", shared.ErrInvalidArgument, reactionID)
	}
	s.record(ctx, activity{models.ReactionRecorded, &models.ReactionDetails{
		SongID:        song.ID,
		SongTitle:     song.Title,
		Artist:        song.Artist,
		Reaction:      reaction.ID,
		ReactionLabel: reaction.Label,
		Icon:          reaction.Icon,
	}})
	return nil
}

// AddCaregiverNote logs a free-text note about song.
func (s *Session) AddCaregiverNote(ctx context.Context, song models.PlaylistSong, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return fmt.Errorf("%w: note is empty", shared.ErrInvalidArgument)
	}
	s.record(ctx, activity{models.CaregiverNoteAdded, &models.CaregiverNoteDetails{
		SongID:    song.ID,
		SongTitle: song.Title,
		Artist:    song.Artist,
		Note:      note,
	}})
	return nil
}

// Stop releases the current handle. Calling it with nothing playing is a no-op.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(ctx)
	return nil
}

// Wait blocks until background activity writes have finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Close stops playback and drains pending activity writes.
func (s *Session) Close(ctx context.Context) error {
	err := s.Stop(ctx)
	s.Wait()
	return err
}

// play opens song and, only once it is playing, records lead followed by song_played.
func (s *Session) play(ctx context.Context, song models.PlaylistSong, lead ...activity) error {
	if err := s.start(ctx, song); err != nil {
		return err
	}
	played := activity{models.SongPlayed, &models.SongPlayedDetails{ID: song.ID, Title: song.Title, Artist: song.Artist}}
	s.record(ctx, append(lead, played)...)
	return nil
}

func (s *Session) start(ctx context.Context, song models.PlaylistSong) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.release(ctx)

	h, err := s.opener.Open(ctx, song)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", song.Title, err)
	}
	s.handle = h
	s.current = &song
	s.logger.Debug("playing", "id", song.ID, "title", song.Title)
	return nil
}

// release stops the held handle. Callers hold mu.
func (s *Session) release(ctx context.Context) {
	if s.handle == nil {
		return
	}
	if err := s.handle.Stop(ctx); err != nil {
		s.logger.Warn("failed to stop previous track", "err", err)
	}
	s.handle = nil
	s.current = nil
}

// record writes activities in the background, detached from ctx cancellation.
// Each batch waits for the previous one, so entries reach the recorder in call order.
func (s *Session) record(ctx context.Context, acts ...activity) {
	if s.recorder == nil || len(acts) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)

	s.queueMu.Lock()
	prev := s.tail
	done := make(chan struct{})
	s.tail = done
	s.queueMu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		for _, a := range acts {
			if entry := s.recorder.LogActivity(bg, a.t, a.details); entry == nil {
				s.logger.Warn("activity was not recorded", "type", string(a.t))
			}
		}
	}()
}
