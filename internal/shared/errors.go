package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// Storage errors
	ErrRemoteUnavailable = fmt.Errorf("remote document store unavailable")
	ErrCacheWrite        = fmt.Errorf("local cache write failed")
	ErrMissingID         = fmt.Errorf("entity id is required")
	ErrNotFound          = fmt.Errorf("not found")

	// Playback errors
	ErrNoTrack = fmt.Errorf("no playable track")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
