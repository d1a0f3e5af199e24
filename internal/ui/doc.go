// Package ui styles terminal output for the CLI with lipgloss.
//
// Colors follow the registries in [models]: moods and reactions carry their own colors and
// activity log badges are colored by action (created, updated, deleted, played, and so on).
//
// Renderers return strings; writing them is left to the caller.
package ui
