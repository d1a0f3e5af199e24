// package models defines the data model for the music therapy memory aid
package models

import (
	"time"
)

// Entity is implemented by pointer receivers of every collection-backed document.
type Entity interface {
	EntityID() string               // EntityID returns the document id, empty when unsaved
	SetEntityID(id string)          // SetEntityID assigns a freshly generated id
	EntityTimestamp() int64         // EntityTimestamp is the epoch ms used for remote ordering
	MarkCreated(now time.Time)      // MarkCreated stamps the creation time on every save
	MarkModified(now time.Time)     // MarkModified stamps the modification time
	SetOwner(uid string)            // SetOwner tags the document with its owner before remote writes
}

// Millis converts a time to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a local [time.Time].
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
