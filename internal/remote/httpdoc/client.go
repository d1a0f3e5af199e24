// Package httpdoc is a [remote.DocumentStore] client for the document API served by `reminisce serve`.
package httpdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/reminisce/internal/remote"
	"golang.org/x/oauth2"
)

// ErrorResponse is the body of every non-2xx response from the document API.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ListResponse wraps the documents returned by a list call.
type ListResponse struct {
	Documents []remote.Document `json:"documents"`
}

// DeleteOwnedRequest is the body of POST /v1/batch/delete-owned.
type DeleteOwnedRequest struct {
	OwnerID     string   `json:"ownerId"`
	Collections []string `json:"collections"`
}

// Client talks to the document API. Requests carry bearer tokens when built with a token source.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying client, e.g. for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTokenSource authenticates every request with tokens from ts.
//
// The existing client's transport and timeout are kept.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(cl *Client) {
		base := cl.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		cl.httpClient = &http.Client{
			Timeout:   cl.httpClient.Timeout,
			Transport: &oauth2.Transport{Source: oauth2.ReuseTokenSource(nil, ts), Base: base},
		}
	}
}

// NewClient creates a client for baseURL. Options are applied in order.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func documentsPath(collection string) string {
	return "/v1/collections/" + url.PathEscape(collection) + "/documents"
}

func documentPath(collection, id string) string {
	return documentsPath(collection) + "/" + url.PathEscape(id)
}

// List calls GET /v1/collections/{collection}/documents.
func (c *Client) List(ctx context.Context, collection string, q remote.Query) ([]remote.Document, error) {
	params := url.Values{}
	if q.OwnerID != "" {
		params.Set("owner", q.OwnerID)
	}
	if q.OrderByTimestampDesc {
		params.Set("order", "desc")
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	endpoint := documentsPath(collection)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var resp ListResponse
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// Get calls GET /v1/collections/{collection}/documents/{id}.
func (c *Client) Get(ctx context.Context, collection, id string) (*remote.Document, error) {
	var doc remote.Document
	if err := c.doRequest(ctx, http.MethodGet, documentPath(collection, id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Set calls PUT /v1/collections/{collection}/documents/{id}.
func (c *Client) Set(ctx context.Context, collection string, doc remote.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", remote.ErrInvalidDocument)
	}
	return c.doRequest(ctx, http.MethodPut, documentPath(collection, doc.ID), doc, nil)
}

// Delete calls DELETE /v1/collections/{collection}/documents/{id}. A 404 is treated as success.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	err := c.doRequest(ctx, http.MethodDelete, documentPath(collection, id), nil, nil)
	if errors.Is(err, remote.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteOwned calls POST /v1/batch/delete-owned.
func (c *Client) DeleteOwned(ctx context.Context, ownerID string, collections ...string) error {
	body := DeleteOwnedRequest{OwnerID: ownerID, Collections: collections}
	return c.doRequest(ctx, http.MethodPost, "/v1/batch/delete-owned", body, nil)
}

// Ping calls GET /healthz.
func (c *Client) Ping(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", remote.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = remote.ErrNotFound
	case http.StatusUnauthorized:
		sentinel = remote.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = remote.ErrForbidden
	case http.StatusBadRequest:
		sentinel = remote.ErrInvalidDocument
	default:
		sentinel = remote.ErrUnreachable
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
		return fmt.Errorf("%w (status %d): %s", sentinel, resp.StatusCode, errResp.Detail)
	}
	return fmt.Errorf("%w: status %d", sentinel, resp.StatusCode)
}
