package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/reminisce/internal/auth"
	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/shared"
)

// kind names one entity collection in both tiers.
type kind struct {
	name       string
	key        string
	collection string
	// owned collections are scoped to the signed-in user on remote.
	owned bool
}

// Collection is the read-through, write-local-first view of one entity kind.
//
// The local cache holds the whole collection under one key; mu serializes its
// read-modify-write cycles.
type Collection[T any, P interface {
	*T
	models.Entity
}] struct {
	store *Store
	kind  kind
	seed  func() []T

	mu sync.Mutex
}

func newCollection[T any, P interface {
	*T
	models.Entity
}](s *Store, k kind) *Collection[T, P] {
	return &Collection[T, P]{store: s, kind: k}
}

// List returns the whole collection. Remote results replace the cache; on any remote trouble the
// cache is returned instead. An empty song cache is seeded with the catalog.
//
// The only error returned is a done context.
func (c *Collection[T, P]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if user := c.store.remoteUser(ctx); user != nil {
		items, err := c.fetch(ctx, user)
		switch {
		case err != nil:
			c.store.logger.Warn("remote list failed, using local cache", "kind", c.kind.name, "err", err)
		case len(items) == 0 && c.seed != nil:
			c.store.logger.Debug("remote catalog empty, using local cache", "kind", c.kind.name)
		default:
			c.replace(ctx, items)
			return items, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.loadSeeded(ctx)
	if err != nil {
		c.store.logger.Warn("local cache unreadable, returning empty", "kind", c.kind.name, "err", err)
		return []T{}, nil
	}
	return items, nil
}

// Get finds one entity by id, remote first. Absent entities yield (nil, nil).
func (c *Collection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if user := c.store.remoteUser(ctx); user != nil {
		item, err := c.fetchOne(ctx, user, id)
		switch {
		case err == nil:
			return item, nil
		case errors.Is(err, remote.ErrNotFound):
			c.store.logger.Debug("not on remote, checking local cache", "kind", c.kind.name, "id", id)
		default:
			c.store.logger.Warn("remote get failed, using local cache", "kind", c.kind.name, "id", id, "err", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.loadSeeded(ctx)
	if err != nil {
		c.store.logger.Warn("local cache unreadable", "kind", c.kind.name, "err", err)
		return nil, nil
	}
	for i := range items {
		if P(&items[i]).EntityID() == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// Save upserts entity, assigning an id when it has none and stamping its creation time.
// The saved copy is returned; entity itself is not modified.
func (c *Collection[T, P]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil %s", shared.ErrInvalidInput, c.kind.name)
	}

	now := c.store.now()
	item := *entity
	p := P(&item)
	if p.EntityID() == "" {
		p.SetEntityID(shared.GenerateTimestampID(now))
	}
	p.MarkCreated(now)

	return c.write(ctx, item)
}

// Update upserts an entity that already has an id and stamps its modification time.
func (c *Collection[T, P]) Update(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil %s", shared.ErrInvalidInput, c.kind.name)
	}
	item := *entity
	p := P(&item)
	if p.EntityID() == "" {
		return nil, fmt.Errorf("%w: cannot update %s", shared.ErrMissingID, c.kind.name)
	}
	p.MarkModified(c.store.now())

	return c.write(ctx, item)
}

// Delete removes id locally, then best-effort from remote. It reports true once the local
// removal is persisted, whether or not the id existed.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: cannot delete %s", shared.ErrMissingID, c.kind.name)
	}

	if err := c.mutate(ctx, func(items []T) []T { return without[T, P](items, id) }); err != nil {
		return false, err
	}

	if user := c.store.remoteUser(ctx); user != nil {
		if err := c.store.remote.Delete(ctx, c.kind.collection, id); err != nil {
			c.store.logger.Error("remote delete failed", "kind", c.kind.name, "id", id, "err", err)
		}
	}
	return true, nil
}

// write persists item locally (replacing any entry with the same id) then pushes it to remote.
func (c *Collection[T, P]) write(ctx context.Context, item T) (*T, error) {
	id := P(&item).EntityID()
	err := c.mutate(ctx, func(items []T) []T {
		return append(without[T, P](items, id), item)
	})
	if err != nil {
		return nil, err
	}

	c.push(ctx, item)
	return &item, nil
}

// mutate runs a read-modify-write cycle on the cached collection under the collection lock.
func (c *Collection[T, P]) mutate(ctx context.Context, fn func([]T) []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.loadSeeded(ctx)
	if err != nil && !errors.Is(err, cache.ErrCorrupt) {
		return fmt.Errorf("%w: %s: %w", shared.ErrCacheWrite, c.kind.name, err)
	}
	if err != nil {
		c.store.logger.Warn("discarding corrupt local cache", "kind", c.kind.name, "err", err)
		items = nil
	}

	if err := cache.SetJSON(ctx, c.store.cache, c.kind.key, fn(items)); err != nil {
		return fmt.Errorf("%w: %s: %w", shared.ErrCacheWrite, c.kind.name, err)
	}
	return nil
}

// push mirrors item to remote. Failures are logged and swallowed.
func (c *Collection[T, P]) push(ctx context.Context, item T) {
	user := c.store.remoteUser(ctx)
	if user == nil {
		return
	}

	p := P(&item)
	owner := ""
	if c.kind.owned {
		owner = user.UID
		p.SetOwner(owner)
	}

	data, err := json.Marshal(p)
	if err != nil {
		c.store.logger.Error("failed to encode document", "kind", c.kind.name, "id", p.EntityID(), "err", err)
		return
	}

	doc := remote.Document{ID: p.EntityID(), OwnerID: owner, Timestamp: p.EntityTimestamp(), Data: data}
	if err := c.store.remote.Set(ctx, c.kind.collection, doc); err != nil {
		c.store.logger.Error("remote save failed", "kind", c.kind.name, "id", doc.ID, "err", err)
	}
}

// replace overwrites the cached collection with exactly items.
func (c *Collection[T, P]) replace(ctx context.Context, items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := cache.SetJSON(ctx, c.store.cache, c.kind.key, items); err != nil {
		c.store.logger.Warn("failed to refresh local cache", "kind", c.kind.name, "err", err)
	}
}

func (c *Collection[T, P]) fetch(ctx context.Context, user *auth.User) ([]T, error) {
	q := remote.Query{}
	if c.kind.owned {
		q.OwnerID = user.UID
	}

	docs, err := c.store.remote.List(ctx, c.kind.collection, q)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc.Data, P(&item)); err != nil {
			return nil, fmt.Errorf("failed to decode %s %s: %w", c.kind.name, doc.ID, err)
		}
		if P(&item).EntityID() == "" {
			P(&item).SetEntityID(doc.ID)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Collection[T, P]) fetchOne(ctx context.Context, user *auth.User, id string) (*T, error) {
	doc, err := c.store.remote.Get(ctx, c.kind.collection, id)
	if err != nil {
		return nil, err
	}
	if c.kind.owned && doc.OwnerID != user.UID {
		return nil, remote.ErrNotFound
	}

	var item T
	if err := json.Unmarshal(doc.Data, P(&item)); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", c.kind.name, doc.ID, err)
	}
	if P(&item).EntityID() == "" {
		P(&item).SetEntityID(doc.ID)
	}
	return &item, nil
}

// load reads the cached collection. Absent keys are an empty collection; undecodable values
// are reported with [cache.ErrCorrupt]. Callers hold mu.
func (c *Collection[T, P]) load(ctx context.Context) ([]T, error) {
	var items []T
	if _, err := cache.GetJSON(ctx, c.store.cache, c.kind.key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadSeeded is load plus catalog seeding for collections that have a seed. Callers hold mu.
func (c *Collection[T, P]) loadSeeded(ctx context.Context) ([]T, error) {
	items, err := c.load(ctx)
	if errors.Is(err, cache.ErrCorrupt) && c.seed != nil {
		c.store.logger.Warn("discarding corrupt local cache", "kind", c.kind.name, "err", err)
		items, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(items) > 0 || c.seed == nil {
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	items = c.seed()
	if err := cache.SetJSON(ctx, c.store.cache, c.kind.key, items); err != nil {
		c.store.logger.Warn("failed to persist seeded catalog", "kind", c.kind.name, "err", err)
	}
	return items, nil
}

func without[T any, P interface {
	*T
	models.Entity
}](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if P(&items[i]).EntityID() != id {
			out = append(out, items[i])
		}
	}
	return out
}
