package models

import (
	"strings"
	"time"
)

// Song is a catalog track. Duration is in seconds and URI references a bundled asset.
type Song struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Album    string   `json:"album,omitempty"`
	Duration int      `json:"duration"`
	URI      string   `json:"uri"`
	Genre    string   `json:"genre,omitempty"`
	Year     int      `json:"year,omitempty"`
	Mood     []string `json:"mood"`
}

func (s *Song) EntityID() string       { return s.ID }
func (s *Song) SetEntityID(id string)  { s.ID = id }
func (s *Song) EntityTimestamp() int64 { return 0 }
func (s *Song) MarkCreated(time.Time)  {}
func (s *Song) MarkModified(time.Time) {}

// SetOwner is a no-op: catalog songs are shared reference data.
func (s *Song) SetOwner(string) {}

// HasMood reports whether the song is tagged with mood, ignoring case.
func (s Song) HasMood(mood string) bool {
	mood = strings.ToLower(strings.TrimSpace(mood))
	for _, m := range s.Mood {
		if strings.ToLower(strings.TrimSpace(m)) == mood {
			return true
		}
	}
	return false
}

// Snapshot copies the display fields embedded into playlists and memories.
func (s Song) Snapshot() PlaylistSong {
	return PlaylistSong{
		ID:       s.ID,
		Title:    s.Title,
		Artist:   s.Artist,
		Album:    s.Album,
		Duration: s.Duration,
		URI:      s.URI,
	}
}

// PlaylistSong is a denormalized copy of a [Song] at the time it was added.
// It is not checked against the catalog.
type PlaylistSong struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration,omitempty"`
	URI      string `json:"uri,omitempty"`
}
