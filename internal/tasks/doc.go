// Package tasks runs the long-running library operations behind the CLI with real-time progress reporting.
//
// # Core Operations
//
//  1. [Engine.PublishCatalog] : push catalog songs to the shared remote songs collection
//     - Rate limited with [golang.org/x/time/rate]
//     - Failures are collected per song and never stop the run
//
//  2. [Engine.BulkExport] : export playlists and memories to files
//     - Fetches each entity through the [Library] (remote first, cache fallback)
//     - A bounded worker pool writes json, csv, markdown or txt
//     - Writes export_manifest.json summarizing every item
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default so a slow reader never stalls a run.
package tasks
