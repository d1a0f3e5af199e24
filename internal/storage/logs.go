package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/shared"
)

const (
	// MaxCachedLogs caps the local activity log.
	MaxCachedLogs = 100
	// DefaultLogLimit applies when ActivityLogs is called with a non-positive max.
	DefaultLogLimit = 50
)

// activityLog guards the cached log list, which is kept newest first.
type activityLog struct {
	store *Store
	mu    sync.Mutex
}

// LogActivity records an action. Types outside the enumeration are stored as
// [models.UnknownActivity]. Logging never fails the caller: nil is returned only when neither the
// local nor the remote write succeeded.
func (s *Store) LogActivity(ctx context.Context, t models.ActivityType, details models.ActivityDetails) *models.ActivityLogEntry {
	if !t.Valid() {
		s.logger.Error("unrecognized activity type", "type", string(t))
		t = models.UnknownActivity
	}
	if details == nil {
		details = models.NewDetails(t)
	} else if !details.Accepts(t) {
		s.logger.Warn("activity details do not match type", "type", string(t), "details", fmt.Sprintf("%T", details))
	}

	now := s.now()
	entry := models.ActivityLogEntry{
		ID:           shared.GenerateLogID(now),
		Timestamp:    models.Millis(now),
		ActivityType: t,
		Details:      details,
	}

	localOK := true
	if err := s.logs.prepend(ctx, entry); err != nil {
		s.logger.Error("failed to cache activity", "type", string(t), "err", err)
		localOK = false
	}

	remoteOK := false
	if user := s.remoteUser(ctx); user != nil {
		remoteEntry := entry
		remoteEntry.UserID = user.UID
		if err := s.pushLog(ctx, remoteEntry); err != nil {
			s.logger.Error("remote activity write failed", "id", entry.ID, "err", err)
		} else {
			remoteOK = true
		}
	}

	if !localOK && !remoteOK {
		return nil
	}
	return &entry
}

// ActivityLogs returns up to max entries, newest first. Non-positive max means [DefaultLogLimit].
// A remote page replaces the cached log; otherwise the cache is sorted and sliced.
func (s *Store) ActivityLogs(ctx context.Context, max int) ([]models.ActivityLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if max <= 0 {
		max = DefaultLogLimit
	}

	if user := s.remoteUser(ctx); user != nil {
		entries, err := s.fetchLogs(ctx, user.UID, max)
		if err == nil {
			s.logs.replace(ctx, entries)
			return entries, nil
		}
		s.logger.Warn("remote activity query failed, using local cache", "err", err)
	}

	s.logs.mu.Lock()
	entries, err := s.logs.load(ctx)
	s.logs.mu.Unlock()
	if err != nil {
		s.logger.Warn("local activity cache unreadable, returning empty", "err", err)
		return []models.ActivityLogEntry{}, nil
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp > entries[j].Timestamp })
	if len(entries) > max {
		entries = entries[:max]
	}
	return entries, nil
}

func (s *Store) pushLog(ctx context.Context, entry models.ActivityLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.remote.Set(ctx, remote.ActivityLogs, remote.Document{
		ID:        entry.ID,
		OwnerID:   entry.UserID,
		Timestamp: entry.Timestamp,
		Data:      data,
	})
}

func (s *Store) fetchLogs(ctx context.Context, uid string, max int) ([]models.ActivityLogEntry, error) {
	docs, err := s.remote.List(ctx, remote.ActivityLogs, remote.Query{OwnerID: uid, OrderByTimestampDesc: true, Limit: max})
	if err != nil {
		return nil, err
	}

	entries := make([]models.ActivityLogEntry, 0, len(docs))
	for _, doc := range docs {
		var e models.ActivityLogEntry
		if err := json.Unmarshal(doc.Data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode activity %s: %w", doc.ID, err)
		}
		if e.ID == "" {
			e.ID = doc.ID
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *activityLog) prepend(ctx context.Context, entry models.ActivityLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if errors.Is(err, cache.ErrCorrupt) {
		l.store.logger.Warn("discarding corrupt activity cache", "err", err)
		entries, err = nil, nil
	}
	if err != nil {
		return err
	}

	entries = append([]models.ActivityLogEntry{entry}, entries...)
	if len(entries) > MaxCachedLogs {
		entries = entries[:MaxCachedLogs]
	}
	return cache.SetJSON(ctx, l.store.cache, cache.KeyLogs, entries)
}

func (l *activityLog) replace(ctx context.Context, entries []models.ActivityLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := cache.SetJSON(ctx, l.store.cache, cache.KeyLogs, entries); err != nil {
		l.store.logger.Warn("failed to refresh activity cache", "err", err)
	}
}

// load reads the cached log. Callers hold mu.
func (l *activityLog) load(ctx context.Context) ([]models.ActivityLogEntry, error) {
	entries := []models.ActivityLogEntry{}
	if _, err := cache.GetJSON(ctx, l.store.cache, cache.KeyLogs, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
