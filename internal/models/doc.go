// Package models defines the entities cached on the device and mirrored in the remote document store.
//
// The package contains three kinds of types:
//
// 1. Entities: documents with stable string ids
//   - [Song] : Bundled catalog track with mood tags
//   - [Playlist] : Named ordered list of song snapshots
//   - [Memory] : Titled recollection with songs carrying memory tags
//   - [ActivityLogEntry] : Append-only record of a caregiver or patient action
//
// 2. Activity details: the [ActivityDetails] tagged union, one struct per [ActivityType] family.
//
// 3. Registries: fixed lookup tables for mood categories, reactions and memory tags, plus the
// default song catalog used to seed an empty cache.
//
// Playlists, memories and songs implement [Entity], which the storage layer uses to assign ids and
// stamp timestamps generically.
package models
