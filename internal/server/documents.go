package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminisce/internal/remote"
)

// Document routes.
const (
	routeList        = "GET /v1/collections/{collection}/documents"
	routeGet         = "GET /v1/collections/{collection}/documents/{id}"
	routePut         = "PUT /v1/collections/{collection}/documents/{id}"
	routeDelete      = "DELETE /v1/collections/{collection}/documents/{id}"
	routeDeleteOwned = "POST /v1/batch/delete-owned"
)

const maxDocumentBytes = 1 << 20

// DocumentHandler exposes a [remote.DocumentStore] over HTTP.
//
// Owned collections are only visible to their owner: reads of another owner's document are
// reported as not found, writes as forbidden. Songs are shared and writable by any signed-in caller.
type DocumentHandler struct {
	store  remote.DocumentStore
	logger *log.Logger
	next   http.Handler
}

func NewDocumentHandler(store remote.DocumentStore, secret []byte, logger *log.Logger) *DocumentHandler {
	h := &DocumentHandler{store: store, logger: logger}
	h.next = RequireToken(secret)(http.HandlerFunc(h.route))
	return h
}

func (h *DocumentHandler) Routes() []string {
	return []string{routeList, routeGet, routePut, routeDelete, routeDeleteOwned}
}

func (h *DocumentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}

func (h *DocumentHandler) route(w http.ResponseWriter, r *http.Request) {
	uid, _ := UIDFromContext(r.Context())

	if r.Pattern == routeDeleteOwned {
		h.deleteOwned(w, r, uid)
		return
	}

	collection := r.PathValue("collection")
	if !knownCollection(collection) {
		writeError(w, http.StatusBadRequest, "unknown collection "+strconv.Quote(collection))
		return
	}

	switch r.Pattern {
	case routeList:
		h.list(w, r, uid, collection)
	case routeGet:
		h.get(w, r, uid, collection, r.PathValue("id"))
	case routePut:
		h.put(w, r, uid, collection, r.PathValue("id"))
	case routeDelete:
		h.delete(w, r, uid, collection, r.PathValue("id"))
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type listResponse struct {
	Documents []remote.Document `json:"documents"`
}

func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request, uid, collection string) {
	params := r.URL.Query()
	q := remote.Query{OrderByTimestampDesc: params.Get("order") == "desc"}

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		q.Limit = limit
	}

	if owned(collection) {
		owner := params.Get("owner")
		if owner != "" && owner != uid {
			writeError(w, http.StatusForbidden, "cannot list another owner's documents")
			return
		}
		q.OwnerID = uid
	}

	docs, err := h.store.List(r.Context(), collection, q)
	if err != nil {
		h.fail(w, "list", collection, err)
		return
	}
	if docs == nil {
		docs = []remote.Document{}
	}
	writeJSON(w, http.StatusOK, listResponse{Documents: docs})
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request, uid, collection, id string) {
	doc, err := h.store.Get(r.Context(), collection, id)
	if err != nil {
		h.fail(w, "get", collection, err)
		return
	}
	if owned(collection) && doc.OwnerID != uid {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) put(w http.ResponseWriter, r *http.Request, uid, collection, id string) {
	var doc remote.Document
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "malformed document")
		return
	}
	if doc.ID == "" {
		doc.ID = id
	}
	if doc.ID != id {
		writeError(w, http.StatusBadRequest, "document id does not match path")
		return
	}
	if len(doc.Data) == 0 || !json.Valid(doc.Data) {
		writeError(w, http.StatusBadRequest, "document data must be JSON")
		return
	}

	if owned(collection) {
		if doc.OwnerID == "" {
			doc.OwnerID = uid
		}
		if doc.OwnerID != uid {
			writeError(w, http.StatusForbidden, "cannot write another owner's document")
			return
		}
		if ok := h.ownsExisting(r.Context(), w, uid, collection, id); !ok {
			return
		}
	} else {
		doc.OwnerID = ""
	}

	if err := h.store.Set(r.Context(), collection, doc); err != nil {
		h.fail(w, "set", collection, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) delete(w http.ResponseWriter, r *http.Request, uid, collection, id string) {
	if owned(collection) {
		if ok := h.ownsExisting(r.Context(), w, uid, collection, id); !ok {
			return
		}
	}
	if err := h.store.Delete(r.Context(), collection, id); err != nil {
		h.fail(w, "delete", collection, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type deleteOwnedRequest struct {
	OwnerID     string   `json:"ownerId"`
	Collections []string `json:"collections"`
}

func (h *DocumentHandler) deleteOwned(w http.ResponseWriter, r *http.Request, uid string) {
	var req deleteOwnedRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	if req.OwnerID != uid {
		writeError(w, http.StatusForbidden, "cannot delete another owner's documents")
		return
	}
	for _, c := range req.Collections {
		if !owned(c) {
			writeError(w, http.StatusBadRequest, "collection "+strconv.Quote(c)+" is not owner-scoped")
			return
		}
	}

	if err := h.store.DeleteOwned(r.Context(), uid, req.Collections...); err != nil {
		h.fail(w, "delete owned", "", err)
		return
	}
	h.logger.Info("deleted owner data", "uid", uid, "collections", req.Collections)
	w.WriteHeader(http.StatusNoContent)
}

// ownsExisting writes a 403 and reports false when id exists under another owner.
func (h *DocumentHandler) ownsExisting(ctx context.Context, w http.ResponseWriter, uid, collection, id string) bool {
	existing, err := h.store.Get(ctx, collection, id)
	switch {
	case errors.Is(err, remote.ErrNotFound):
		return true
	case err != nil:
		h.fail(w, "get", collection, err)
		return false
	case existing.OwnerID != uid:
		writeError(w, http.StatusForbidden, "document belongs to another owner")
		return false
	}
	return true
}

func (h *DocumentHandler) fail(w http.ResponseWriter, op, collection string, err error) {
	switch {
	case errors.Is(err, remote.ErrNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, remote.ErrInvalidDocument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, remote.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Error("store failure", "op", op, "collection", collection, "err", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	}
}

// Health reports 200 when the store answers a ping, or always when it cannot be pinged.
func Health(store remote.DocumentStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := store.(remote.Pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func knownCollection(c string) bool {
	return c == remote.Songs || owned(c)
}

func owned(c string) bool {
	return slices.Contains(remote.OwnedCollections, c)
}
