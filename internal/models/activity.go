package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActivityType is the closed set of loggable actions.
type ActivityType string

const (
	PlaylistCreated    ActivityType = "playlist_created"
	PlaylistUpdated    ActivityType = "playlist_updated"
	PlaylistDeleted    ActivityType = "playlist_deleted"
	PlaylistPlayed     ActivityType = "playlist_played"
	MemoryCreated      ActivityType = "memory_created"
	MemoryUpdated      ActivityType = "memory_updated"
	MemoryDeleted      ActivityType = "memory_deleted"
	MemoryPlayed       ActivityType = "memory_played"
	SongPlayed         ActivityType = "song_played"
	ReactionRecorded   ActivityType = "reaction_recorded"
	CaregiverNoteAdded ActivityType = "caregiver_note_added"
	TagUpdated         ActivityType = "tag_updated"

	// UnknownActivity replaces any type outside the enumeration.
	UnknownActivity ActivityType = "unknown_activity"
)

// ActivityTypes lists the valid types in declaration order, excluding [UnknownActivity].
var ActivityTypes = []ActivityType{
	PlaylistCreated, PlaylistUpdated, PlaylistDeleted, PlaylistPlayed,
	MemoryCreated, MemoryUpdated, MemoryDeleted, MemoryPlayed,
	SongPlayed, ReactionRecorded, CaregiverNoteAdded, TagUpdated,
}

// Valid reports whether t is one of [ActivityTypes].
func (t ActivityType) Valid() bool {
	for _, v := range ActivityTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (t ActivityType) String() string { return string(t) }

// ActivityDetails is the payload of an [ActivityLogEntry]. The set of implementations is closed;
// every implementation is a pointer type.
type ActivityDetails interface {
	// Accepts reports whether the payload belongs to activity type t.
	Accepts(t ActivityType) bool
	// Describe renders the human-readable log line for t.
	Describe(t ActivityType) string
	activityDetails()
}

type PlaylistDetails struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SongCount int    `json:"songCount"`
}

type MemoryDetails struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SongCount int    `json:"songCount"`
	HasTags   bool   `json:"hasTags"`
	TagCount  int    `json:"tagCount"`
}

type SongPlayedDetails struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type ReactionDetails struct {
	SongID        string `json:"songId"`
	SongTitle     string `json:"songTitle"`
	Artist        string `json:"artist"`
	Reaction      string `json:"reaction"`
	ReactionLabel string `json:"reactionLabel"`
	Icon          string `json:"icon,omitempty"`
}

type CaregiverNoteDetails struct {
	SongID    string `json:"songId"`
	SongTitle string `json:"songTitle"`
	Artist    string `json:"artist"`
	Note      string `json:"note"`
}

type TagUpdatedDetails struct {
	MemoryID  string   `json:"memoryId"`
	SongID    string   `json:"songId"`
	SongTitle string   `json:"songTitle"`
	Tags      []string `json:"tags"`
}

// UnknownDetails carries a payload whose type could not be recognized, verbatim.
type UnknownDetails struct {
	Raw json.RawMessage
}

func (*PlaylistDetails) activityDetails()      {}
func (*MemoryDetails) activityDetails()        {}
func (*SongPlayedDetails) activityDetails()    {}
func (*ReactionDetails) activityDetails()      {}
func (*CaregiverNoteDetails) activityDetails() {}
func (*TagUpdatedDetails) activityDetails()    {}
func (*UnknownDetails) activityDetails()       {}

func (*PlaylistDetails) Accepts(t ActivityType) bool {
	return t == PlaylistCreated || t == PlaylistUpdated || t == PlaylistDeleted || t == PlaylistPlayed
}

func (*MemoryDetails) Accepts(t ActivityType) bool {
	return t == MemoryCreated || t == MemoryUpdated || t == MemoryDeleted || t == MemoryPlayed
}

func (*SongPlayedDetails) Accepts(t ActivityType) bool    { return t == SongPlayed }
func (*ReactionDetails) Accepts(t ActivityType) bool      { return t == ReactionRecorded }
func (*CaregiverNoteDetails) Accepts(t ActivityType) bool { return t == CaregiverNoteAdded }
func (*TagUpdatedDetails) Accepts(t ActivityType) bool    { return t == TagUpdated }
func (*UnknownDetails) Accepts(t ActivityType) bool       { return t == UnknownActivity }

const unknownText = "Unknown activity"

func (d *PlaylistDetails) Describe(t ActivityType) string {
	switch t {
	case PlaylistCreated:
		return fmt.Sprintf("Created playlist \"%s\"", d.Name)
	case PlaylistUpdated:
		return fmt.Sprintf("Updated playlist \"%s\"", d.Name)
	case PlaylistDeleted:
		return fmt.Sprintf("Deleted playlist \"%s\"", d.Name)
	case PlaylistPlayed:
		return fmt.Sprintf("Played playlist \"%s\"", d.Name)
	}
	return unknownText
}

func (d *MemoryDetails) Describe(t ActivityType) string {
	switch t {
	case MemoryCreated:
		return fmt.Sprintf("Created memory \"%s\"", d.Title)
	case MemoryUpdated:
		return fmt.Sprintf("Updated memory \"%s\"", d.Title)
	case MemoryDeleted:
		return fmt.Sprintf("Deleted memory \"%s\"", d.Title)
	case MemoryPlayed:
		return fmt.Sprintf("Recalled memory \"%s\"", d.Title)
	}
	return unknownText
}

func (d *SongPlayedDetails) Describe(t ActivityType) string {
	if t != SongPlayed {
		return unknownText
	}
	return fmt.Sprintf("Played song \"%s\" by %s", d.Title, d.Artist)
}

func (d *ReactionDetails) Describe(t ActivityType) string {
	if t != ReactionRecorded {
		return unknownText
	}
	return fmt.Sprintf("Patient reaction to \"%s\": %s", d.SongTitle, d.ReactionLabel)
}

func (d *CaregiverNoteDetails) Describe(t ActivityType) string {
	if t != CaregiverNoteAdded {
		return unknownText
	}
	return fmt.Sprintf("Added note for \"%s\"", d.SongTitle)
}

func (d *TagUpdatedDetails) Describe(t ActivityType) string {
	if t != TagUpdated {
		return unknownText
	}
	return fmt.Sprintf("Updated memory tag for \"%s\"", d.SongTitle)
}

func (d *UnknownDetails) Describe(ActivityType) string { return unknownText }

func (d *UnknownDetails) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("{}"), nil
	}
	return d.Raw, nil
}

func (d *UnknownDetails) UnmarshalJSON(data []byte) error {
	d.Raw = append(d.Raw[:0], data...)
	return nil
}

// NewDetails returns an empty payload of the variant that belongs to t.
func NewDetails(t ActivityType) ActivityDetails {
	switch t {
	case PlaylistCreated, PlaylistUpdated, PlaylistDeleted, PlaylistPlayed:
		return &PlaylistDetails{}
	case MemoryCreated, MemoryUpdated, MemoryDeleted, MemoryPlayed:
		return &MemoryDetails{}
	case SongPlayed:
		return &SongPlayedDetails{}
	case ReactionRecorded:
		return &ReactionDetails{}
	case CaregiverNoteAdded:
		return &CaregiverNoteDetails{}
	case TagUpdated:
		return &TagUpdatedDetails{}
	}
	return &UnknownDetails{}
}

// ActivityLogEntry records one action. Timestamp is epoch ms.
type ActivityLogEntry struct {
	ID           string
	Timestamp    int64
	ActivityType ActivityType
	Details      ActivityDetails
	UserID       string
}

// Describe renders the log line, falling back to "Unknown activity".
func (e ActivityLogEntry) Describe() string {
	if e.Details == nil || !e.ActivityType.Valid() {
		return unknownText
	}
	return e.Details.Describe(e.ActivityType)
}

type activityJSON struct {
	ID           string          `json:"id"`
	Timestamp    int64           `json:"timestamp"`
	ActivityType ActivityType    `json:"activityType"`
	Details      json.RawMessage `json:"details"`
	UserID       string          `json:"userId,omitempty"`
}

func (e ActivityLogEntry) MarshalJSON() ([]byte, error) {
	details := json.RawMessage("{}")
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s details: %w", e.ActivityType, err)
		}
		details = b
	}
	return json.Marshal(activityJSON{
		ID:           e.ID,
		Timestamp:    e.Timestamp,
		ActivityType: e.ActivityType,
		Details:      details,
		UserID:       e.UserID,
	})
}

// UnmarshalJSON decodes details into the variant selected by activityType. Payloads that do not
// fit their variant, or belong to an unrecognized type, are kept as [UnknownDetails].
func (e *ActivityLogEntry) UnmarshalJSON(data []byte) error {
	var raw activityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ID = raw.ID
	e.Timestamp = raw.Timestamp
	e.ActivityType = raw.ActivityType
	e.UserID = raw.UserID

	payload := bytes.TrimSpace(raw.Details)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		e.Details = NewDetails(raw.ActivityType)
		return nil
	}

	d := NewDetails(raw.ActivityType)
	if err := json.Unmarshal(payload, d); err != nil {
		d = &UnknownDetails{Raw: append(json.RawMessage(nil), payload...)}
	}
	e.Details = d
	return nil
}
