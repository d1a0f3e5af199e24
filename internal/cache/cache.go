package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Well-known keys.
const (
	KeySongs          = "@music_therapy_songs"
	KeyPlaylists      = "@music_therapy_playlists"
	KeyMemories       = "@music_therapy_memories"
	KeyLogs           = "@music_therapy_logs"
	KeyHasSeenWelcome = "@has_seen_welcome"
	KeyTheme          = "@theme_preference"
	KeyCaregiverMode  = "@caregiver_mode"
	KeyAuth           = "@auth_credentials"
)

// Cache is a string-keyed byte store. Get reports ok=false for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, keys ...string) error
}

// GetJSON decodes the value at key into v. Absent keys leave v untouched and return ok=false.
// A value that does not decode is reported as an error so callers can decide to treat it as empty.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: %s: %w", ErrCorrupt, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, c Cache, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.Set(ctx, key, raw)
}

// ErrCorrupt marks a stored value that could not be decoded.
var ErrCorrupt = fmt.Errorf("corrupt cache value")
