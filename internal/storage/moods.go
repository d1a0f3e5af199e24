package storage

import (
	"context"

	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/shared"
)

// SongsByMood returns the songs tagged with moodID, comparing case-insensitively.
func (s *Store) SongsByMood(ctx context.Context, moodID string) ([]models.Song, error) {
	songs, err := s.songs.List(ctx)
	if err != nil {
		return nil, err
	}

	mood := shared.NormalizeMood(moodID)
	matched := []models.Song{}
	for _, song := range songs {
		if song.HasMood(mood) {
			matched = append(matched, song)
		}
	}
	return matched, nil
}

// AvailableMoods returns the registered mood categories used by at least one song, in registry order.
func (s *Store) AvailableMoods(ctx context.Context) ([]models.MoodCategory, error) {
	songs, err := s.songs.List(ctx)
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	for _, song := range songs {
		for _, m := range song.Mood {
			used[shared.NormalizeMood(m)] = true
		}
	}

	available := []models.MoodCategory{}
	for _, category := range models.MoodCategories() {
		if used[category.ID] {
			available = append(available, category)
		}
	}
	return available, nil
}
