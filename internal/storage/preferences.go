package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/shared"
)

// Theme is the display theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences are device-local flags stored as plain strings in the cache. They are never synced.
type Preferences struct {
	cache cache.Cache
}

func NewPreferences(c cache.Cache) *Preferences {
	return &Preferences{cache: c}
}

// HasSeenWelcome reports whether onboarding was completed. Unreadable values read as false.
func (p *Preferences) HasSeenWelcome(ctx context.Context) bool {
	return p.flag(ctx, cache.KeyHasSeenWelcome)
}

func (p *Preferences) SetHasSeenWelcome(ctx context.Context, v bool) error {
	return p.set(ctx, cache.KeyHasSeenWelcome, strconv.FormatBool(v))
}

// Theme defaults to light for absent or unknown values.
func (p *Preferences) Theme(ctx context.Context) Theme {
	raw, ok, err := p.cache.Get(ctx, cache.KeyTheme)
	if err != nil || !ok {
		return ThemeLight
	}
	if Theme(raw) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (p *Preferences) SetTheme(ctx context.Context, t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return fmt.Errorf("%w: theme %q", shared.ErrInvalidArgument, t)
	}
	return p.set(ctx, cache.KeyTheme, string(t))
}

// CaregiverMode enables caregiver-only actions such as notes and reactions.
func (p *Preferences) CaregiverMode(ctx context.Context) bool {
	return p.flag(ctx, cache.KeyCaregiverMode)
}

func (p *Preferences) SetCaregiverMode(ctx context.Context, v bool) error {
	return p.set(ctx, cache.KeyCaregiverMode, strconv.FormatBool(v))
}

func (p *Preferences) flag(ctx context.Context, key string) bool {
	raw, ok, err := p.cache.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	v, err := strconv.ParseBool(string(raw))
	return err == nil && v
}

func (p *Preferences) set(ctx context.Context, key, value string) error {
	if err := p.cache.Set(ctx, key, []byte(value)); err != nil {
		return fmt.Errorf("%w: %s: %w", shared.ErrCacheWrite, key, err)
	}
	return nil
}
