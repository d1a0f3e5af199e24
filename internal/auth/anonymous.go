package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/shared"
	"golang.org/x/oauth2"
)

// AnonymousPath is the sign-in endpoint of the document server.
const AnonymousPath = "/v1/auth/anonymous"

// refreshSkew renews credentials slightly before they expire.
const refreshSkew = time.Minute

// Credentials are persisted under [cache.KeyAuth] between runs.
type Credentials struct {
	UID       string    `json:"uid"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (c *Credentials) valid(now time.Time) bool {
	return c != nil && c.UID != "" && c.Token != "" && now.Add(refreshSkew).Before(c.ExpiresAt)
}

// Anonymous signs in anonymously and keeps the session in the local cache.
//
// It also implements [oauth2.TokenSource] so the HTTP document client can attach bearer tokens.
type Anonymous struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
	logger     *log.Logger
	now        func() time.Time

	mu    sync.Mutex
	creds *Credentials
}

// NewAnonymous creates an authenticator for the document server at baseURL.
func NewAnonymous(baseURL string, c cache.Cache, httpClient *http.Client, logger *log.Logger) *Anonymous {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Anonymous{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      c,
		logger:     shared.WithLogger(logger, "component", "auth"),
		now:        time.Now,
	}
}

// EnsureAuthenticated returns the current user, reusing cached credentials and signing in only
// when none are valid.
func (a *Anonymous) EnsureAuthenticated(ctx context.Context) (*User, error) {
	creds, err := a.credentials(ctx)
	if err != nil {
		return nil, err
	}
	return &User{UID: creds.UID}, nil
}

// Token implements [oauth2.TokenSource].
func (a *Anonymous) Token() (*oauth2.Token, error) {
	creds, err := a.credentials(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: creds.Token, TokenType: "Bearer", Expiry: creds.ExpiresAt}, nil
}

// SignOut forgets the session locally.
func (a *Anonymous) SignOut(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creds = nil
	return a.cache.Remove(ctx, cache.KeyAuth)
}

func (a *Anonymous) credentials(ctx context.Context) (*Credentials, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if a.creds.valid(now) {
		return a.creds, nil
	}

	previous := a.creds
	var stored Credentials
	ok, err := cache.GetJSON(ctx, a.cache, cache.KeyAuth, &stored)
	switch {
	case err != nil:
		a.logger.Warn("ignoring unreadable stored credentials", "err", err)
	case ok && stored.valid(now):
		a.creds = &stored
		return a.creds, nil
	case ok && stored.Token != "":
		previous = &stored
	}

	creds, err := a.signIn(ctx, previous)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, a.cache, cache.KeyAuth, creds); err != nil {
		a.logger.Warn("failed to persist credentials", "err", err)
	}
	a.creds = creds
	a.logger.Info("signed in anonymously", "uid", creds.UID)
	return creds, nil
}

// signIn requests a session. An expired previous token is presented so the server can renew the
// same uid instead of minting a new owner.
func (a *Anonymous) signIn(ctx context.Context, previous *Credentials) (*Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+AnonymousPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if previous != nil && previous.Token != "" {
		req.Header.Set("Authorization", "Bearer "+previous.Token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("failed to decode sign-in response: %w", err)
	}
	if creds.UID == "" || creds.Token == "" {
		return nil, errors.Join(shared.ErrAuthFailed, fmt.Errorf("sign-in response missing uid or token"))
	}
	return &creds, nil
}
