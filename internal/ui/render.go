package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/reminisce/internal/formatter"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/tasks"
)

const descriptionWidth = 60

func Title(s string) string   { return styles.title.Render(s) }
func Success(s string) string { return styles.ok.Render(s) }
func Error(s string) string   { return styles.err.Render(s) }
func Warn(s string) string    { return styles.warn.Render(s) }
func Help(s string) string    { return styles.help.Render(s) }

// Badge renders s as a colored chip.
func Badge(s string, c lipgloss.Color) string {
	return styles.On(s, c)
}

// SongLine renders "id. Artist - Title [m:ss]" followed by mood chips.
func SongLine(s models.Song) string {
	moods := make([]string, 0, len(s.Mood))
	for _, m := range s.Mood {
		moods = append(moods, styles.As(m, MoodColor(m)))
	}
	line := fmt.Sprintf("%3s. %s - %s [%s]", s.ID, s.Artist, s.Title, formatter.FormatDuration(s.Duration))
	if len(moods) > 0 {
		line += "  " + strings.Join(moods, " ")
	}
	return line
}

// SongDetail renders every catalog field of s.
func SongDetail(s models.Song) string {
	var b strings.Builder
	b.WriteString(Title(s.Title) + "\n")
	fmt.Fprintf(&b, "Artist:   %s\n", s.Artist)
	if s.Album != "" {
		fmt.Fprintf(&b, "Album:    %s\n", s.Album)
	}
	if s.Genre != "" {
		fmt.Fprintf(&b, "Genre:    %s\n", s.Genre)
	}
	if s.Year != 0 {
		fmt.Fprintf(&b, "Year:     %d\n", s.Year)
	}
	fmt.Fprintf(&b, "Duration: %s\n", formatter.FormatDuration(s.Duration))
	fmt.Fprintf(&b, "Moods:    %s\n", strings.Join(s.Mood, ", "))
	return b.String()
}

// MoodLine renders a mood category with its song count.
func MoodLine(m models.MoodCategory, count int) string {
	return fmt.Sprintf("%s %s", Badge(m.Name, lipgloss.Color(m.Color)), Help(fmt.Sprintf("%s (%d songs)", m.Description, count)))
}

// PlaylistLine renders a one-line playlist summary.
func PlaylistLine(p models.Playlist) string {
	line := fmt.Sprintf("%s  %s (%d songs)", Help(p.ID), p.Name, len(p.Songs))
	if p.Mood != "" {
		line += " " + styles.As(p.Mood, MoodColor(p.Mood))
	}
	return line
}

// PlaylistDetail renders a playlist with its songs.
func PlaylistDetail(p models.Playlist) string {
	var b strings.Builder
	b.WriteString(Title(p.Name) + "\n")
	if p.Description != "" {
		b.WriteString(formatter.Truncate(p.Description, descriptionWidth) + "\n")
	}
	fmt.Fprintf(&b, "Created %s\n\n", formatter.FormatDate(p.CreatedAt))
	for i, s := range p.Songs {
		fmt.Fprintf(&b, "%2d. %s - %s [%s]\n", i+1, s.Artist, s.Title, formatter.FormatDuration(s.Duration))
	}
	return b.String()
}

// MemoryLine renders a one-line memory summary.
func MemoryLine(m models.Memory) string {
	line := fmt.Sprintf("%s  %s (%d songs)", Help(m.ID), m.Title, len(m.Songs))
	if m.Date != "" {
		line += " " + Help(m.Date)
	}
	return line
}

// MemoryDetail renders a memory with its songs and their tags.
func MemoryDetail(m models.Memory) string {
	var b strings.Builder
	b.WriteString(Title(m.Title) + "\n")
	if m.Date != "" {
		fmt.Fprintf(&b, "When: %s\n", m.Date)
	}
	if m.Description != "" {
		b.WriteString(formatter.Truncate(m.Description, descriptionWidth) + "\n")
	}
	b.WriteString("\n")
	for i, s := range m.Songs {
		fmt.Fprintf(&b, "%2d. %s - %s\n", i+1, s.Artist, s.Title)
		for _, tag := range s.MemoryTags {
			fmt.Fprintf(&b, "      %s\n", Help(tag.Label))
		}
	}
	return b.String()
}

// LogLine renders an activity log entry with a colored type badge.
func LogLine(e models.ActivityLogEntry) string {
	line := fmt.Sprintf("%s %s %s", Help(formatter.FormatDateTime(e.Timestamp)), Badge(string(e.ActivityType), ActivityColor(e.ActivityType)), e.Describe())
	switch d := e.Details.(type) {
	case *models.CaregiverNoteDetails:
		if d.Note != "" {
			line += "\n    " + Help("Note: "+d.Note)
		}
	case *models.ReactionDetails:
		line = strings.Replace(line, d.ReactionLabel, styles.As(d.ReactionLabel, ReactionColor(d.Reaction)), 1)
	}
	return line
}

// ProgressLine renders a task progress update.
func ProgressLine(u tasks.ProgressUpdate) string {
	switch {
	case strings.Contains(u.Message, "✗"):
		return Error(u.Message)
	case strings.Contains(u.Message, "✓"):
		return Success(u.Message)
	}
	return Help(u.Message)
}
