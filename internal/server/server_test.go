package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/reminisce/internal/auth"
	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/models"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/remote/httpdoc"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/desertthunder/reminisce/internal/storage"
	tu "github.com/desertthunder/reminisce/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func newTestServer(t *testing.T) (*httptest.Server, *tu.MemoryRemote) {
	t.Helper()
	backend := tu.NewMemoryRemote()
	srv, err := New(Options{Store: backend, Secret: secret, TokenTTL: time.Hour})
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, backend
}

func token(t *testing.T, uid string) string {
	t.Helper()
	tok, _, err := auth.IssueToken(uid, secret, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, method, url, bearer, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNew(t *testing.T) {
	t.Run("requires store and secret", func(t *testing.T) {
		_, err := New(Options{Secret: secret})
		assert.Error(t, err)
		_, err = New(Options{Store: tu.NewMemoryRemote()})
		assert.Error(t, err)
	})
}

func TestRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, []string{"first", "second", "handler"}, order)
	})

	t.Run("wrong method", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("recovers panics", func(t *testing.T) {
		r := NewBasicRouter()
		r.Use(Recoverer(shared.WithLogger(nil)))
		r.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"detail"`)
	})
}

func TestAnonymousSignIn(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("mints a new uid", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+auth.AnonymousPath, "", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var creds auth.Credentials
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&creds))
		assert.NotEmpty(t, creds.UID)

		uid, err := auth.ParseToken(creds.Token, secret)
		require.NoError(t, err)
		assert.Equal(t, creds.UID, uid)
	})

	t.Run("renews expired token with same uid", func(t *testing.T) {
		expired, _, err := auth.IssueToken("returning-user", secret, time.Hour, time.Now().Add(-2*time.Hour))
		require.NoError(t, err)

		resp := do(t, http.MethodPost, ts.URL+auth.AnonymousPath, expired, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var creds auth.Credentials
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&creds))
		assert.Equal(t, "returning-user", creds.UID)
	})

	t.Run("foreign token gets a fresh uid", func(t *testing.T) {
		foreign, _, err := auth.IssueToken("intruder", []byte("other-secret"), time.Hour, time.Now())
		require.NoError(t, err)

		resp := do(t, http.MethodPost, ts.URL+auth.AnonymousPath, foreign, "")
		var creds auth.Credentials
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&creds))
		assert.NotEqual(t, "intruder", creds.UID)
	})
}

func TestDocuments(t *testing.T) {
	t.Run("requires token", func(t *testing.T) {
		ts, _ := newTestServer(t)
		resp := do(t, http.MethodGet, ts.URL+"/v1/collections/playlists/documents", "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp = do(t, http.MethodGet, ts.URL+"/v1/collections/playlists/documents", "garbage", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown collection", func(t *testing.T) {
		ts, _ := newTestServer(t)
		tok := token(t, "a")
		resp := do(t, http.MethodGet, ts.URL+"/v1/collections/users/documents", tok, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = do(t, http.MethodPut, ts.URL+"/v1/collections/users/documents/u1", tok, `{"id":"u1","data":{}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = do(t, http.MethodDelete, ts.URL+"/v1/collections/users/documents/u1", tok, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("owner scoping", func(t *testing.T) {
		ts, backend := newTestServer(t)
		backend.Put(remote.Playlists, remote.Document{ID: "p1", OwnerID: "alice", Data: json.RawMessage(`{"id":"p1"}`)})

		bob := token(t, "bob")
		resp := do(t, http.MethodGet, ts.URL+"/v1/collections/playlists/documents/p1", bob, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = do(t, http.MethodPut, ts.URL+"/v1/collections/playlists/documents/p1", bob, `{"id":"p1","data":{"id":"p1"}}`)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = do(t, http.MethodDelete, ts.URL+"/v1/collections/playlists/documents/p1", bob, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, 1, backend.Len(remote.Playlists))

		resp = do(t, http.MethodGet, ts.URL+"/v1/collections/playlists/documents?owner=alice", bob, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = do(t, http.MethodPost, ts.URL+"/v1/batch/delete-owned", bob, `{"ownerId":"alice","collections":["playlists"]}`)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("songs are shared", func(t *testing.T) {
		ts, backend := newTestServer(t)
		resp := do(t, http.MethodPut, ts.URL+"/v1/collections/songs/documents/1", token(t, "a"), `{"id":"1","ownerId":"a","data":{"id":"1"}}`)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		doc, err := backend.Get(context.Background(), remote.Songs, "1")
		require.NoError(t, err)
		assert.Empty(t, doc.OwnerID)

		resp = do(t, http.MethodGet, ts.URL+"/v1/collections/songs/documents/1", token(t, "b"), "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad documents", func(t *testing.T) {
		ts, _ := newTestServer(t)
		tok := token(t, "a")

		resp := do(t, http.MethodPut, ts.URL+"/v1/collections/memories/documents/m1", tok, `{`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = do(t, http.MethodPut, ts.URL+"/v1/collections/memories/documents/m1", tok, `{"id":"m2","data":{}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = do(t, http.MethodPut, ts.URL+"/v1/collections/memories/documents/m1", tok, `{"id":"m1"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = do(t, http.MethodGet, ts.URL+"/v1/collections/memories/documents?limit=-1", tok, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = do(t, http.MethodPost, ts.URL+"/v1/batch/delete-owned", tok, `{"ownerId":"a","collections":["songs"]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("backend outage", func(t *testing.T) {
		ts, backend := newTestServer(t)
		backend.FailAll()

		resp := do(t, http.MethodGet, ts.URL+"/v1/collections/memories/documents", token(t, "a"), "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestStoreRoundTrip drives the cache-backed store against the server through the HTTP client
// and anonymous sign-in, the same wiring the CLI uses.
func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	ts, backend := newTestServer(t)

	newStore := func(local cache.Cache) *storage.Store {
		anon := auth.NewAnonymous(ts.URL, local, ts.Client(), nil)
		client := httpdoc.NewClient(ts.URL, 5*time.Second, httpdoc.WithHTTPClient(ts.Client()), httpdoc.WithTokenSource(anon))
		return storage.NewStore(storage.Options{Cache: local, Remote: client, RemoteAvailable: true, Auth: anon})
	}

	local := cache.NewMemoryCache()
	store := newStore(local)

	saved, err := store.Memories().Save(ctx, &models.Memory{Title: "Summer 1965"})
	require.NoError(t, err)
	require.NotNil(t, store.LogActivity(ctx, models.MemoryCreated, saved.Details()))
	assert.Equal(t, 1, backend.Len(remote.Memories))
	assert.Equal(t, 1, backend.Len(remote.ActivityLogs))

	// A second device with a fresh cache signs in as a different anonymous user.
	other := newStore(cache.NewMemoryCache())
	theirs, err := other.Memories().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	// The same device, restarted, reuses its persisted credentials.
	restarted := newStore(local)
	mine, err := restarted.Memories().List(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Summer 1965", mine[0].Title)

	logs, err := restarted.ActivityLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, `Created memory "Summer 1965"`, logs[0].Describe())

	ok, err := restarted.ClearAllData(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, backend.Len(remote.Memories))
	assert.Equal(t, 0, backend.Len(remote.ActivityLogs))
}
