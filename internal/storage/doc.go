// Package storage is the dual-tier data access layer.
//
// Every read tries the remote document store first, provided remote access is enabled and the
// authenticator yields a user, and falls back to the local cache on any failure. A successful
// remote read replaces the cached collection with exactly what was fetched.
//
// Every write lands in the local cache first and unconditionally, then is mirrored to remote on a
// best-effort basis: remote failures are logged and never reach the caller. The local cache is
// therefore the durable record, and a write made offline is not retried later.
//
// Collections:
//   - [Store.Songs] : Catalog, unfiltered on remote, seeded from [models.DefaultSongs] when empty
//   - [Store.Playlists] : Owner-scoped playlists
//   - [Store.Memories] : Owner-scoped memories
//
// The activity log ([Store.LogActivity], [Store.ActivityLogs]) is append-only, capped locally at
// [MaxCachedLogs] entries, and never fails its caller.
package storage
