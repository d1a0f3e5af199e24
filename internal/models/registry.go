package models

import "strings"

// MoodCategory is an entry of the fixed mood registry. Icon names follow the Ionicons set.
type MoodCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

var moodCategories = []MoodCategory{
	{ID: "happy", Name: "Happy", Description: "Uplifting songs to boost mood and energy", Icon: "happy-outline", Color: "#4CD964"},
	{ID: "nostalgic", Name: "Nostalgic", Description: "Songs that evoke memories from the past", Icon: "time-outline", Color: "#FF9500"},
	{ID: "relaxing", Name: "Relaxing", Description: "Calm and peaceful music for stress relief", Icon: "water-outline", Color: "#5AC8FA"},
	{ID: "spiritual", Name: "Spiritual", Description: "Music for spiritual connection and peace", Icon: "flower-outline", Color: "#AF52DE"},
	{ID: "sad", Name: "Sad", Description: "Emotional songs that may help process feelings", Icon: "rainy-outline", Color: "#8E8E93"},
	{ID: "upbeat", Name: "Upbeat", Description: "Energetic songs to stimulate and motivate", Icon: "pulse-outline", Color: "#FF2D55"},
	{ID: "emotional", Name: "Emotional", Description: "Songs that evoke strong feelings", Icon: "heart-outline", Color: "#FF3B30"},
}

// MoodCategories returns the registry in its fixed display order.
func MoodCategories() []MoodCategory {
	return append([]MoodCategory(nil), moodCategories...)
}

// LookupMood finds a mood category by id, ignoring case.
func LookupMood(id string) (MoodCategory, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, m := range moodCategories {
		if m.ID == id {
			return m, true
		}
	}
	return MoodCategory{}, false
}

// ReactionType describes an observed patient response to a song.
type ReactionType struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

var reactionTypes = []ReactionType{
	{ID: "happy", Label: "Happy", Icon: "happy-outline", Description: "Smiled, laughed, or showed joy", Color: "#4CAF50"},
	{ID: "calm", Label: "Calm", Icon: "water-outline", Description: "Appeared relaxed or soothed", Color: "#2196F3"},
	{ID: "nostalgic", Label: "Nostalgic", Icon: "hourglass-outline", Description: "Showed recognition or reminisced", Color: "#9C27B0"},
	{ID: "neutral", Label: "Neutral", Icon: "remove-outline", Description: "No significant change in behavior", Color: "#607D8B"},
	{ID: "sad", Label: "Sad", Icon: "sad-outline", Description: "Appeared upset or tearful", Color: "#2196F3"},
	{ID: "agitated", Label: "Agitated", Icon: "flash-outline", Description: "Showed signs of distress or irritation", Color: "#F44336"},
	{ID: "no_response", Label: "No Response", Icon: "remove-circle-outline", Description: "Did not show any visible reaction", Color: "#9E9E9E"},
}

func ReactionTypes() []ReactionType {
	return append([]ReactionType(nil), reactionTypes...)
}

func LookupReaction(id string) (ReactionType, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, r := range reactionTypes {
		if r.ID == id {
			return r, true
		}
	}
	return ReactionType{}, false
}

var memoryTags = []MemoryTag{
	{ID: "wedding", Label: "Wedding Day", Icon: "heart"},
	{ID: "childhood", Label: "Childhood", Icon: "bicycle"},
	{ID: "favorite", Label: "Favorite Song", Icon: "star"},
	{ID: "family", Label: "Family Moments", Icon: "people"},
	{ID: "holiday", Label: "Holiday Memory", Icon: "airplane"},
	{ID: "spiritual", Label: "Spiritual Moment", Icon: "flower"},
	{ID: "achievement", Label: "Achievement", Icon: "trophy"},
	{ID: "travel", Label: "Travel Memory", Icon: "map"},
}

// MemoryTags returns the predefined tags offered when annotating memory songs.
func MemoryTags() []MemoryTag {
	return append([]MemoryTag(nil), memoryTags...)
}

func LookupMemoryTag(id string) (MemoryTag, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, tag := range memoryTags {
		if tag.ID == id {
			return tag, true
		}
	}
	return MemoryTag{}, false
}
