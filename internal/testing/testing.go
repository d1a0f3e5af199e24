// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/remote"
)

// ErrInjected is the default error returned by failure injection.
var ErrInjected = errors.New("injected failure")

// Remote operations that can be made to fail.
const (
	OpList        = "list"
	OpGet         = "get"
	OpSet         = "set"
	OpDelete      = "delete"
	OpDeleteOwned = "delete_owned"
)

// MemoryRemote is an in-memory [remote.DocumentStore] with per-operation failure injection.
type MemoryRemote struct {
	mu    sync.Mutex
	docs  map[string]map[string]storedDoc
	seq   int
	fail  map[string]error
	calls []string
}

type storedDoc struct {
	doc remote.Document
	seq int
}

func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{docs: make(map[string]map[string]storedDoc), fail: make(map[string]error)}
}

// FailOn makes op return err (or [ErrInjected] when nil) until [MemoryRemote.Heal].
func (m *MemoryRemote) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	m.fail[op] = err
}

// FailAll makes every operation fail, simulating an unreachable store.
func (m *MemoryRemote) FailAll() {
	for _, op := range []string{OpList, OpGet, OpSet, OpDelete, OpDeleteOwned} {
		m.FailOn(op, remote.ErrUnreachable)
	}
}

func (m *MemoryRemote) Heal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = make(map[string]error)
}

// Calls returns the operations attempted so far, as "op:collection".
func (m *MemoryRemote) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Put stores a document directly, bypassing failure injection.
func (m *MemoryRemote) Put(collection string, doc remote.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, doc)
}

// Len counts the documents in a collection.
func (m *MemoryRemote) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[collection])
}

func (m *MemoryRemote) put(collection string, doc remote.Document) {
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]storedDoc)
	}
	m.seq++
	m.docs[collection][doc.ID] = storedDoc{doc: doc, seq: m.seq}
}

func (m *MemoryRemote) enter(op, collection string) error {
	m.calls = append(m.calls, op+":"+collection)
	return m.fail[op]
}

func (m *MemoryRemote) List(_ context.Context, collection string, q remote.Query) ([]remote.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpList, collection); err != nil {
		return nil, err
	}

	var found []storedDoc
	for _, sd := range m.docs[collection] {
		if q.OwnerID != "" && sd.doc.OwnerID != q.OwnerID {
			continue
		}
		found = append(found, sd)
	}

	if q.OrderByTimestampDesc {
		sort.Slice(found, func(i, j int) bool {
			if found[i].doc.Timestamp != found[j].doc.Timestamp {
				return found[i].doc.Timestamp > found[j].doc.Timestamp
			}
			return found[i].seq > found[j].seq
		})
	} else {
		sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })
	}
	if q.Limit > 0 && len(found) > q.Limit {
		found = found[:q.Limit]
	}

	docs := make([]remote.Document, len(found))
	for i, sd := range found {
		docs[i] = sd.doc
	}
	return docs, nil
}

func (m *MemoryRemote) Get(_ context.Context, collection, id string) (*remote.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpGet, collection); err != nil {
		return nil, err
	}
	sd, ok := m.docs[collection][id]
	if !ok {
		return nil, remote.ErrNotFound
	}
	doc := sd.doc
	return &doc, nil
}

func (m *MemoryRemote) Set(_ context.Context, collection string, doc remote.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpSet, collection); err != nil {
		return err
	}
	if existing, ok := m.docs[collection][doc.ID]; ok {
		existing.doc = doc
		m.docs[collection][doc.ID] = existing
		return nil
	}
	m.put(collection, doc)
	return nil
}

func (m *MemoryRemote) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpDelete, collection); err != nil {
		return err
	}
	delete(m.docs[collection], id)
	return nil
}

func (m *MemoryRemote) DeleteOwned(_ context.Context, ownerID string, collections ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpDeleteOwned, ""); err != nil {
		return err
	}
	for _, c := range collections {
		for id, sd := range m.docs[c] {
			if sd.doc.OwnerID == ownerID {
				delete(m.docs[c], id)
			}
		}
	}
	return nil
}

// FlakyCache wraps a [cache.Cache] and can fail reads or writes on demand.
type FlakyCache struct {
	cache.Cache

	mu        sync.Mutex
	failRead  bool
	failWrite bool
}

func NewFlakyCache(c cache.Cache) *FlakyCache {
	return &FlakyCache{Cache: c}
}

func (f *FlakyCache) FailReads(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRead = v
}

func (f *FlakyCache) FailWrites(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite = v
}

func (f *FlakyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failRead
	f.mu.Unlock()
	if fail {
		return nil, false, ErrInjected
	}
	return f.Cache.Get(ctx, key)
}

func (f *FlakyCache) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Cache.Set(ctx, key, value)
}

func (f *FlakyCache) Remove(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Cache.Remove(ctx, keys...)
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
