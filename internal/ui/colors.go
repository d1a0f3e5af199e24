package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/reminisce/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Activity colors by category.
const (
	colorCreated  = "#4caf50"
	colorUpdated  = "#2196f3"
	colorDeleted  = "#f44336"
	colorPlayed   = "#4A90E2"
	colorSong     = "#9c27b0"
	colorReaction = "#FF9800"
	colorNote     = "#009688"
	colorTag      = "#795548"
	colorDefault  = "#757575"
)

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var _ Painter = (*Palette)(nil)

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Padding(0, 1).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// ActivityColor picks the badge color for t by the action it names.
func ActivityColor(t models.ActivityType) lipgloss.Color {
	s := string(t)
	switch {
	case strings.HasSuffix(s, "_created"):
		return colorCreated
	case strings.HasSuffix(s, "_updated") && t != models.TagUpdated:
		return colorUpdated
	case strings.HasSuffix(s, "_deleted"):
		return colorDeleted
	case t == models.PlaylistPlayed || t == models.MemoryPlayed:
		return colorPlayed
	case t == models.SongPlayed:
		return colorSong
	case t == models.ReactionRecorded:
		return colorReaction
	case t == models.CaregiverNoteAdded:
		return colorNote
	case t == models.TagUpdated:
		return colorTag
	}
	return colorDefault
}

// MoodColor returns the registry color of a mood id, or the default gray.
func MoodColor(id string) lipgloss.Color {
	if m, ok := models.LookupMood(id); ok {
		return lipgloss.Color(m.Color)
	}
	return colorDefault
}

// ReactionColor returns the registry color of a reaction id, or the default gray.
func ReactionColor(id string) lipgloss.Color {
	if r, ok := models.LookupReaction(id); ok {
		return lipgloss.Color(r.Color)
	}
	return colorDefault
}
