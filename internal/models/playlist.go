package models

import (
	"fmt"
	"strings"
	"time"
)

// Playlist is a caregiver-curated list of songs. CreatedAt is epoch ms.
type Playlist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Songs        []PlaylistSong `json:"songs"`
	CreatedAt    int64          `json:"createdAt"`
	DateModified *time.Time     `json:"dateModified,omitempty"`
	Mood         string         `json:"mood,omitempty"`
	UserID       string         `json:"userId,omitempty"`
}

func (p *Playlist) EntityID() string       { return p.ID }
func (p *Playlist) SetEntityID(id string)  { p.ID = id }
func (p *Playlist) EntityTimestamp() int64 { return p.CreatedAt }
func (p *Playlist) SetOwner(uid string)    { p.UserID = uid }

func (p *Playlist) MarkCreated(now time.Time) {
	p.CreatedAt = Millis(now)
}

func (p *Playlist) MarkModified(now time.Time) {
	t := now.UTC()
	p.DateModified = &t
}

// Validate checks the fields a caregiver must provide.
func (p Playlist) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("playlist name is required")
	}
	if p.Mood != "" {
		if _, ok := LookupMood(p.Mood); !ok {
			return fmt.Errorf("unknown mood %q", p.Mood)
		}
	}
	return nil
}

// TotalDuration sums the song durations in seconds.
func (p Playlist) TotalDuration() int {
	total := 0
	for _, s := range p.Songs {
		total += s.Duration
	}
	return total
}

// Details builds the activity payload describing this playlist.
func (p Playlist) Details() *PlaylistDetails {
	return &PlaylistDetails{ID: p.ID, Name: p.Name, SongCount: len(p.Songs)}
}
