package models

import (
	"fmt"
	"strings"
	"time"
)

// MemoryTag labels why a song matters within a memory.
type MemoryTag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// MemorySong is a song snapshot annotated with memory tags.
type MemorySong struct {
	PlaylistSong
	MemoryTags []MemoryTag `json:"memoryTags,omitempty"`
}

// TagSummary is the per-song digest of memory tag labels.
type TagSummary struct {
	SongID    string   `json:"songId"`
	SongTitle string   `json:"songTitle"`
	Tags      []string `json:"tags"`
}

// Memory links a period of the patient's life to songs. Date is a free-text label such as "Summer 1965".
type Memory struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Date        string       `json:"date,omitempty"`
	Description string       `json:"description,omitempty"`
	Songs       []MemorySong `json:"songs"`
	CreatedAt   int64        `json:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
	TagsSummary []TagSummary `json:"tagsSummary,omitempty"`
	UserID      string       `json:"userId,omitempty"`
}

func (m *Memory) EntityID() string       { return m.ID }
func (m *Memory) SetEntityID(id string)  { m.ID = id }
func (m *Memory) EntityTimestamp() int64 { return m.CreatedAt }
func (m *Memory) SetOwner(uid string)    { m.UserID = uid }

func (m *Memory) MarkCreated(now time.Time) {
	m.CreatedAt = Millis(now)
}

func (m *Memory) MarkModified(now time.Time) {
	t := now.UTC()
	m.UpdatedAt = &t
}

func (m Memory) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("memory title is required")
	}
	return nil
}

// Summarize rebuilds TagsSummary from the songs that carry at least one tag.
func (m *Memory) Summarize() {
	m.TagsSummary = nil
	for _, s := range m.Songs {
		if len(s.MemoryTags) == 0 {
			continue
		}
		labels := make([]string, 0, len(s.MemoryTags))
		for _, tag := range s.MemoryTags {
			labels = append(labels, tag.Label)
		}
		m.TagsSummary = append(m.TagsSummary, TagSummary{SongID: s.ID, SongTitle: s.Title, Tags: labels})
	}
}

// TagCount counts tags across all songs.
func (m Memory) TagCount() int {
	n := 0
	for _, s := range m.Songs {
		n += len(s.MemoryTags)
	}
	return n
}

// Details builds the activity payload describing this memory.
func (m Memory) Details() *MemoryDetails {
	n := m.TagCount()
	return &MemoryDetails{ID: m.ID, Title: m.Title, SongCount: len(m.Songs), HasTags: n > 0, TagCount: n}
}

// Playlist flattens the memory's songs so it can be played like a playlist.
func (m Memory) Playlist() Playlist {
	songs := make([]PlaylistSong, 0, len(m.Songs))
	for _, s := range m.Songs {
		songs = append(songs, s.PlaylistSong)
	}
	return Playlist{ID: m.ID, Name: m.Title, Description: m.Description, Songs: songs}
}
