// Package remote defines the contract of the remote document store that the cache mirrors.
//
// A store holds named collections of JSON documents. Documents may carry an owner id; owned
// collections are always queried and cleared per owner.
package remote

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names.
const (
	Songs        = "songs"
	Playlists    = "playlists"
	Memories     = "memories"
	ActivityLogs = "activity_logs"
)

// OwnedCollections are cleared together by a bulk wipe.
var OwnedCollections = []string{Playlists, Memories, ActivityLogs}

var (
	// ErrNotFound is returned by Get for an absent document.
	ErrNotFound        = errors.New("document not found")
	ErrUnreachable     = errors.New("remote store unreachable")
	ErrUnauthorized    = errors.New("remote store rejected credentials")
	ErrForbidden       = errors.New("document belongs to another owner")
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is one stored record. Timestamp (epoch ms) orders activity logs.
type Document struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Query filters a List call. Zero values mean unfiltered, store order, no limit.
type Query struct {
	OwnerID              string
	OrderByTimestampDesc bool
	Limit                int
}

// DocumentStore is implemented by every remote backend.
type DocumentStore interface {
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set upserts by id.
	Set(ctx context.Context, collection string, doc Document) error
	// Delete of an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error
	// DeleteOwned removes every document of ownerID in the given collections, all or nothing.
	DeleteOwned(ctx context.Context, ownerID string, collections ...string) error
}

// Pinger is implemented by backends that can cheaply check reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
