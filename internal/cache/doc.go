// Package cache implements the device-local key-value store that mirrors remote collections.
//
// Values are opaque bytes (JSON in practice) keyed by short strings such as "@music_therapy_songs".
//
// Key Implementations:
//   - [SQLiteCache] : Durable cache in the local SQLite database, one row per key
//   - [MemoryCache] : Map-backed cache for tests and ephemeral sessions
//
// [GetJSON] and [SetJSON] wrap the byte interface for typed access.
package cache
