package models

import (
	"fmt"
	"strings"
)

// LogFilter narrows an activity log to one category.
type LogFilter string

const (
	FilterAll       LogFilter = "all"
	FilterPlaylists LogFilter = "playlists"
	FilterMemories  LogFilter = "memories"
	FilterSongs     LogFilter = "songs"
	FilterReactions LogFilter = "reactions"
	FilterNotes     LogFilter = "notes"
)

var LogFilters = []LogFilter{FilterAll, FilterPlaylists, FilterMemories, FilterSongs, FilterReactions, FilterNotes}

// ParseLogFilter accepts any of [LogFilters], case-insensitively. Empty means [FilterAll].
func ParseLogFilter(s string) (LogFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range LogFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown log filter %q", s)
}

// Matches reports whether an entry of type t belongs to the category.
func (f LogFilter) Matches(t ActivityType) bool {
	switch f {
	case FilterPlaylists:
		return strings.HasPrefix(string(t), "playlist_")
	case FilterMemories:
		return strings.HasPrefix(string(t), "memory_")
	case FilterSongs:
		return t == SongPlayed
	case FilterReactions:
		return t == ReactionRecorded
	case FilterNotes:
		return t == CaregiverNoteAdded
	}
	return true
}

// FilterLogs keeps the entries matching f, preserving order.
func FilterLogs(entries []ActivityLogEntry, f LogFilter) []ActivityLogEntry {
	out := make([]ActivityLogEntry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e.ActivityType) {
			out = append(out, e)
		}
	}
	return out
}
